package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

// HashPassword returns the bcrypt hash stored in place of the plain password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CorrectPassword compares a candidate password against a stored hash
func CorrectPassword(candidate string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
