package domain

import "regexp"

// Pair identifies a trading pair, e.g. "BTC/USD". Comparison is exact and case-sensitive.
type Pair string

const MaxPairLen = 32

var pairRe = regexp.MustCompile(`^[A-Za-z0-9_./:-]+$`)

func ValidatePair(p string) bool {
	if p == "" || len(p) > MaxPairLen {
		return false
	}
	return pairRe.MatchString(p)
}
