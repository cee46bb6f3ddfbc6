package utils

import (
	"crypto/rand"
	"math/big"
)

const userIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// UserIDPrefix starts every generated user id; ids are always 10 chars.
const UserIDPrefix = "USR00"

// GenerateUserID returns UserIDPrefix followed by 5 random base36 chars.
func GenerateUserID() (string, error) {
	const suffixLen = 5
	b := []byte(UserIDPrefix)
	max := big.NewInt(int64(len(userIDAlphabet)))
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b = append(b, userIDAlphabet[n.Int64()])
	}
	return string(b), nil
}
