package adder

import (
	"errors"
	"math"
	"testing"
)

func TestParseOperand(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    int32
		wantErr error
	}{
		{"plain", "42", 42, nil},
		{"negative", "-17", -17, nil},
		{"explicit plus", "+8", 8, nil},
		{"whitespace", "  9\n", 9, nil},
		{"max", "2147483647", math.MaxInt32, nil},
		{"min", "-2147483648", math.MinInt32, nil},
		{"above max", "2147483648", 0, ErrOutOfRange},
		{"below min", "-2147483649", 0, ErrOutOfRange},
		{"empty", "", 0, ErrInvalidOperand},
		{"letters", "abc", 0, ErrInvalidOperand},
		{"float", "1.5", 0, ErrInvalidOperand},
		{"hex", "0x10", 0, ErrInvalidOperand},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseOperand(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseOperand(%q) error = %v, want %v", tc.input, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOperand(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseOperand(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestParsePair(t *testing.T) {
	r, err := ParsePair("2147483647", "1")
	if err != nil {
		t.Fatalf("ParsePair: %v", err)
	}
	if r.Sum != math.MinInt32 || !r.Overflow {
		t.Errorf("ParsePair = %+v, want wrapped sum with overflow", r)
	}

	if _, err := ParsePair("1", "x"); !errors.Is(err, ErrInvalidOperand) {
		t.Errorf("expected ErrInvalidOperand for second operand, got %v", err)
	}
}
