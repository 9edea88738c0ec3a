package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// ErrInvalidAmount is returned for amounts that are not plain non-negative decimals.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a base-10 token amount.
func ParseAmount(s string) (uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return uint256.Int{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return *v, nil
}

// ParseOptionalAmount parses s when present. A nil result means "use the default".
func ParseOptionalAmount(s *string) (*uint256.Int, error) {
	if s == nil {
		return nil, nil
	}
	v, err := ParseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
