package notfound

import (
	"crypto/rand"
	"math/big"
)

// DefaultTokenLength is the length of random probe file and directory names.
const DefaultTokenLength = 8

const alnum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TokenFunc returns a random alphanumeric string of length n.
type TokenFunc func(n int) string

// RandomToken is the default TokenFunc.
func RandomToken(n int) string {
	limit := big.NewInt(int64(len(alnum)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("notfound: crypto/rand unavailable: " + err.Error())
		}
		b[i] = alnum[v.Int64()]
	}
	return string(b)
}
