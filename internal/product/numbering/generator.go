// Package numbering issues sequential, zero-padded product numbers.
package numbering

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultWidth is the minimal number of digits of a product number.
const DefaultWidth = 3

// ErrInvalidProductNumber is returned when the latest stored number is not a base-10 integer.
var ErrInvalidProductNumber = errors.New("invalid product number")

// Generator computes the next product number from the latest issued one.
// The zero value pads to DefaultWidth.
type Generator struct {
	Width int
}

// NewGenerator returns a Generator padding numbers to width digits.
func NewGenerator(width int) Generator {
	return Generator{Width: width}
}

// Next returns the number following latest. A nil latest means no product has been issued yet.
// Next has no side effects; two callers passing the same latest get the same result.
func (g Generator) Next(latest *string) (string, error) {
	var current uint64
	if latest != nil {
		n, err := strconv.ParseUint(*latest, 10, 63)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidProductNumber, *latest)
		}
		if n == math.MaxInt64 {
			return "", fmt.Errorf("%w: %q overflows", ErrInvalidProductNumber, *latest)
		}
		current = n
	}
	return fmt.Sprintf("%0*d", g.width(), current+1), nil
}

func (g Generator) width() int {
	if g.Width < 1 {
		return DefaultWidth
	}
	return g.Width
}

// Compare orders two digit strings by numeric value without parsing them:
// the longer one is greater once leading zeros are stripped, equal lengths compare lexicographically.
// It returns -1, 0 or +1.
func Compare(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return strings.Compare(a, b)
	}
}
