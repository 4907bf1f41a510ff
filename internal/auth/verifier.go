package auth

import (
	"context" // Store lookups
	"fmt"     // Error wrapping
	"time"    // Token lifetime

	"virtual_wallet/internal/domain" // Importing domain models
	"virtual_wallet/internal/store"  // Store contracts
	"virtual_wallet/internal/utils"  // JWT codec
)

// TokenType is reported alongside issued tokens
const TokenType = "bearer"

// Verifier maps bearer tokens to users. A token is valid while its signature and expiry check out and its subject still exists.
type Verifier struct {
	secret string           // HMAC secret
	ttl    time.Duration    // Token lifetime
	users  store.Users      // Subject lookup
	now    func() time.Time // Clock
}

// NewVerifier returns a Verifier signing with secret and issuing tokens valid for ttl
func NewVerifier(secret string, ttl time.Duration, users store.Users) *Verifier {
	return &Verifier{secret: secret, ttl: ttl, users: users, now: time.Now}
}

// Issue returns a signed token for username and its expiry
func (v *Verifier) Issue(username string) (string, time.Time, error) {
	return utils.GenerateJWT(username, v.secret, v.now(), v.ttl)
}

// Verify validates token and returns the user it names.
// Bad tokens fail with domain.ErrInvalidCredential, vanished subjects with domain.ErrUserNotFound.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := utils.ParseJWT(token, v.secret, v.now()) // Signature, expiry and subject
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}
	return v.users.FindByUsername(ctx, claims.Subject) // Resolve the subject
}
