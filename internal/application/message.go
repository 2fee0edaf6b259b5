package application

import (
	"strconv"
	"strings"

	"price-registry/internal/domain"
)

// SetPriceMessage is the canonical payload a provider signs to authorize SetPrice.
// Pairs cannot contain newlines, so the encoding is unambiguous.
func SetPriceMessage(pair domain.Pair, price int64, provider domain.Address) []byte {
	var b strings.Builder
	b.WriteString("set_price\n")
	b.WriteString(string(pair))
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(price, 10))
	b.WriteByte('\n')
	b.WriteString(string(provider))
	return []byte(b.String())
}
