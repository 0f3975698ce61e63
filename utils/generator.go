package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

var otpSpan = big.NewInt(900000)

// GenerateOTP returns a uniformly random 6-digit code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
