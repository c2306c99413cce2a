package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOneTimeCode returns a random 6-digit numeric code used to
// authorize password resets and account deletion out of band.
func GenerateOneTimeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
