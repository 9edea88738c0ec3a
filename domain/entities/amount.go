package entities

import (
	"fmt"

	"github.com/holiman/uint256"
)

// MinimumDeposit is the smallest accepted deposit in token base units.
const MinimumDeposit uint64 = 1_000_000

// AmountOf converts a uint64 into an amount.
func AmountOf(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// Add returns a+b, failing instead of wrapping.
func Add(a, b uint256.Int) (uint256.Int, error) {
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&a, &b); overflow {
		return uint256.Int{}, fmt.Errorf("%w: %s + %s", ErrOverflow, a.Dec(), b.Dec())
	}
	return sum, nil
}

// Sub returns a-b, failing instead of wrapping.
func Sub(a, b uint256.Int) (uint256.Int, error) {
	var diff uint256.Int
	if _, underflow := diff.SubOverflow(&a, &b); underflow {
		return uint256.Int{}, fmt.Errorf("%w: %s - %s", ErrUnderflow, a.Dec(), b.Dec())
	}
	return diff, nil
}

// Sum adds all amounts with overflow checking.
func Sum(amounts ...uint256.Int) (uint256.Int, error) {
	var total uint256.Int
	for _, a := range amounts {
		next, err := Add(total, a)
		if err != nil {
			return uint256.Int{}, err
		}
		total = next
	}
	return total, nil
}

// MulDiv returns a*b/d rounded down, using a 512-bit intermediate product.
func MulDiv(a, b, d uint256.Int) (uint256.Int, error) {
	if d.IsZero() {
		return uint256.Int{}, fmt.Errorf("%w: division by zero", ErrOverflow)
	}
	var out uint256.Int
	if _, overflow := out.MulDivOverflow(&a, &b, &d); overflow {
		return uint256.Int{}, fmt.Errorf("%w: %s * %s / %s", ErrOverflow, a.Dec(), b.Dec(), d.Dec())
	}
	return out, nil
}

// Min returns the smaller of a and b.
func Min(a, b uint256.Int) uint256.Int {
	if a.Lt(&b) {
		return a
	}
	return b
}
