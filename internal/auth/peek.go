package auth

import "net/http"

// Peeker reads the caller's user id from the session cookie without
// verifying the token inside. Use it for display hints only, never to
// authorize.
type Peeker struct {
	carrier *Carrier
	issuer  *Issuer
}

func NewPeeker(carrier *Carrier, issuer *Issuer) *Peeker {
	return &Peeker{carrier: carrier, issuer: issuer}
}

// UserID returns "" when there is no readable session.
func (p *Peeker) UserID(r *http.Request) string {
	token, ok := p.carrier.Extract(r)
	if !ok {
		return ""
	}
	claims, err := p.issuer.Decode(token)
	if err != nil {
		return ""
	}
	return claims.UserID
}
