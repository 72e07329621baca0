package security

import (
	"crypto/rand"
	"math/big"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// NewVerificationCode returns a uniformly random 6 digit code
func NewVerificationCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, err
	}

	return int(n.Int64()) + codeMin, nil
}
