package utils

import (
	"crypto/subtle"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

var bcryptPattern = regexp.MustCompile(`^\$2[aby]\$`)

var bcryptCost = DefaultBcryptCost

// SetBcryptCost overrides the cost used by HashPassword. Values outside the
// range bcrypt accepts are ignored.
func SetBcryptCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		bcryptCost = cost
	}
}

// IsBcryptHash sniffs the stored value; anything else is a legacy plaintext password.
func IsBcryptHash(stored string) bool {
	return bcryptPattern.MatchString(stored)
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks plain against stored. The second result is true when
// stored was plaintext and matched, meaning the caller should rehash it.
func ComparePassword(plain, stored string) (ok bool, needsUpgrade bool) {
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	if stored == "" {
		return false, false
	}
	match := subtle.ConstantTimeCompare([]byte(plain), []byte(stored)) == 1
	return match, match
}
