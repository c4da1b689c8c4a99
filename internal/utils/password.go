package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is applied when no cost is configured.
const DefaultBcryptCost = 12

// dummyHash is compared against when the user does not exist so both
// branches of a login spend the same bcrypt work.
var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnPasswordCheck performs a throwaway comparison for unknown users.
// cost should match the cost real hashes are stored with.
func BurnPasswordCheck(password string, cost int) {
	dummyHashOnce.Do(func() {
		if cost == 0 {
			cost = DefaultBcryptCost
		}
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
