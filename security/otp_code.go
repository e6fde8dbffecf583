package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var codeSpace = big.NewInt(1000000)

// GenerateOTPCode returns a uniform 6-digit decimal code, left-zero-padded.
// The code travels over the email channel only and is never derivable
// without it.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
