// Package password abstracts the password hashing primitive so the core
// engine depends on a hash/verify capability rather than a specific
// algorithm.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher hashes plaintext passwords and verifies them against stored hashes.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a Hasher with the given bcrypt cost.
// A cost of zero falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash returns the bcrypt hash of plain.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored bcrypt hash.
func (h *BcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
