package utils

import (
	"crypto/rand"
	"math/big"
)

// Team codes skip lookalike characters (0/O, 1/I/L) since they get read out
// loud and typed by hand.
const teamCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const teamCodeLength = 6

// GenerateTeamCode returns a short join code. Uniqueness is enforced by the
// store's unique index, not here.
func GenerateTeamCode() string {
	code := make([]byte, teamCodeLength)
	max := big.NewInt(int64(len(teamCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// a predictable code is worse than crashing.
			panic(err)
		}
		code[i] = teamCodeCharset[n.Int64()]
	}
	return string(code)
}
