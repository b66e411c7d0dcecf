// Package auth owns the myIDM login session.
package auth

import (
	"crypto/sha1" //nolint:gosec // the vendor protocol requires SHA-1
	"encoding/hex"
)

// HashPassword returns the lowercase hex SHA-1 digest the login endpoint expects.
func HashPassword(password string) string {
	h := sha1.Sum([]byte(password))
	return hex.EncodeToString(h[:])
}
