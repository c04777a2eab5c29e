package model

// CartOwner is the identity a cart request acts on behalf of: either an
// authenticated account or an anonymous session token. When both are present
// on a request the account wins; the session token only identifies carts
// built before authentication. This type is the single place that carries the
// owner tag - everything past the identity resolver works on a cart id.
type CartOwner struct {
	accountID    *uint
	sessionToken string
}

// AccountOwner builds the owner for an authenticated account.
func AccountOwner(accountID uint) CartOwner {
	return CartOwner{accountID: &accountID}
}

// SessionOwner builds the owner for an anonymous session token.
func SessionOwner(token string) CartOwner {
	return CartOwner{sessionToken: token}
}

// ResolveOwner picks the effective owner for a request that may carry both
// identities. Returns ok=false when neither is present.
func ResolveOwner(accountID *uint, sessionToken string) (CartOwner, bool) {
	if accountID != nil {
		return AccountOwner(*accountID), true
	}
	if sessionToken != "" {
		return SessionOwner(sessionToken), true
	}
	return CartOwner{}, false
}

// IsZero reports whether no identity was supplied at all.
func (o CartOwner) IsZero() bool {
	return o.accountID == nil && o.sessionToken == ""
}

func (o CartOwner) IsAccount() bool {
	return o.accountID != nil
}

func (o CartOwner) AccountID() (uint, bool) {
	if o.accountID == nil {
		return 0, false
	}
	return *o.accountID, true
}

func (o CartOwner) SessionToken() (string, bool) {
	if o.accountID != nil || o.sessionToken == "" {
		return "", false
	}
	return o.sessionToken, true
}

// LogFields renders the owner for structured logging without leaking which
// field backs it.
func (o CartOwner) LogFields() map[string]interface{} {
	if o.accountID != nil {
		return map[string]interface{}{"owner": "account", "account_id": *o.accountID}
	}
	return map[string]interface{}{"owner": "session", "session_token": o.sessionToken}
}
