package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configuration leaves the cost unset
const DefaultBcryptCost = bcrypt.DefaultCost

// HashPassword will generate a password hash
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if cost == 0 {
		cost = DefaultBcryptCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// BcryptComparer is the production PasswordComparer
type BcryptComparer struct{}

// Compare implements PasswordComparer.
func (BcryptComparer) Compare(password, hash string) bool {
	return ComparePasswordAndHash(password, hash) == nil
}

// RandomPassword returns a throwaway secret used for federated records and
// the decoy hash.
func RandomPassword() string {
	return uuid.NewString()
}

// NewDecoyHash hashes a random secret at cost. It must use the same cost as
// real records so decoy comparisons take as long as real ones.
func NewDecoyHash(cost int) (string, error) {
	return HashPassword(RandomPassword(), cost)
}

// HashCost returns the cost encoded in a bcrypt hash.
func HashCost(hash string) (int, error) {
	return bcrypt.Cost([]byte(hash))
}
