package adder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidOperand is returned for text that is not a decimal integer.
	ErrInvalidOperand = errors.New("invalid operand")
	// ErrOutOfRange is returned for integers that do not fit in an int32.
	ErrOutOfRange = errors.New("operand out of int32 range")
)

// ParseOperand parses a decimal int32 operand. Surrounding whitespace and a
// leading sign are accepted.
func ParseOperand(s string) (int32, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidOperand)
	}

	v, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, trimmed)
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperand, trimmed)
	}
	return int32(v), nil
}

// ParsePair parses two operands and evaluates them.
func ParsePair(a, b string) (Result, error) {
	x, err := ParseOperand(a)
	if err != nil {
		return Result{}, fmt.Errorf("first operand: %w", err)
	}
	y, err := ParseOperand(b)
	if err != nil {
		return Result{}, fmt.Errorf("second operand: %w", err)
	}
	return Eval(x, y), nil
}
