package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vostra/vostra-backend/config"
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/internal/db"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds the catalog and stock ledger from an XLSX export. One row per
// sellable product/color/size combination:
//
//	Name | Description | Category | Color | Image URL | Size | Size Order | Quantity | Unit Price
type seedRow struct {
	Name        string
	Description string
	Category    string
	Color       string
	ImageURL    string
	Size        string
	SizeOrder   int
	Quantity    int
	UnitPrice   decimal.Decimal
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readRowsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total stock rows to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	stockRepo := repository.NewStockRepository(db.GetDB())
	if err := importRows(db.GetDB(), stockRepo, rows); err != nil {
		log.Fatal("Failed to import:", err)
	}

	fmt.Println("Import completed successfully!")
}

func readRowsFromXLSX(filePath string) ([]seedRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("no data rows in sheet %s", sheetName)
	}

	var rows []seedRow
	for i, cells := range raw[1:] { // skip header
		get := func(col int) string {
			if col < len(cells) {
				return strings.TrimSpace(cells[col])
			}
			return ""
		}

		name := get(0)
		if name == "" {
			continue
		}

		sizeOrder, err := strconv.Atoi(get(6))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid size order %q", i+2, get(6))
		}
		quantity, err := strconv.Atoi(get(7))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q", i+2, get(7))
		}
		unitPrice, err := decimal.NewFromString(get(8))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid unit price %q", i+2, get(8))
		}

		rows = append(rows, seedRow{
			Name:        name,
			Description: get(1),
			Category:    get(2),
			Color:       get(3),
			ImageURL:    get(4),
			Size:        get(5),
			SizeOrder:   sizeOrder,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		})
	}

	return rows, nil
}

func importRows(database *gorm.DB, stockRepo repository.StockRepository, rows []seedRow) error {
	for i, row := range rows {
		var product model.Product
		if err := database.
			Where(model.Product{Name: row.Name}).
			Attrs(model.Product{
				Description: row.Description,
				Category:    model.ProductCategory(row.Category),
				ImageURL:    row.ImageURL,
			}).
			FirstOrCreate(&product).Error; err != nil {
			return fmt.Errorf("row %d: product %q: %w", i+2, row.Name, err)
		}

		var variant model.ProductVariant
		if err := database.
			Where(model.ProductVariant{ProductID: product.ID, Color: row.Color}).
			Attrs(model.ProductVariant{ImageURL: row.ImageURL}).
			FirstOrCreate(&variant).Error; err != nil {
			return fmt.Errorf("row %d: variant %q: %w", i+2, row.Color, err)
		}

		var size model.Size
		if err := database.
			Where(model.Size{Label: row.Size}).
			Attrs(model.Size{SortOrder: row.SizeOrder}).
			FirstOrCreate(&size).Error; err != nil {
			return fmt.Errorf("row %d: size %q: %w", i+2, row.Size, err)
		}

		if err := stockRepo.Upsert(&model.Stock{
			ProductID: product.ID,
			VariantID: variant.ID,
			SizeID:    size.ID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		}); err != nil {
			return fmt.Errorf("row %d: stock: %w", i+2, err)
		}
	}
	return nil
}
