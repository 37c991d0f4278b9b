package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest cost accepted for stored secrets.
const MinBcryptCost = 10

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 10

// HashPassword hashes password with a fresh salt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches hashedPassword. A mismatch is not an error.
func CheckPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
