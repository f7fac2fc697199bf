package wire

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinaryRequest(t *testing.T) {
	r := require.New(t)

	bp := PackRequest(math.MinInt32, -1)
	defer Release(bp)
	r.Len(*bp, RequestSize)
	r.Equal([]byte{0x80, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}, *bp)

	a, b, err := UnpackRequest(*bp)
	r.NoError(err)
	r.Equal(int32(math.MinInt32), a)
	r.Equal(int32(-1), b)
}

func TestBinaryResult(t *testing.T) {
	r := require.New(t)

	bp := PackResult(math.MinInt32, true)
	defer Release(bp)
	r.Equal([]byte{0x80, 0, 0, 0, 0x01}, *bp)

	sum, overflowed, err := UnpackResult(*bp)
	r.NoError(err)
	r.Equal(int32(math.MinInt32), sum)
	r.True(overflowed)
}

func TestPooledBuffersAreReused(t *testing.T) {
	r := require.New(t)

	for i := 0; i < 100; i++ {
		bp := PackResult(math.MaxInt32, true)
		r.Len(*bp, ResultSize)
		Release(bp)

		// A recycled buffer must not keep the previous overflow flag.
		bp = PackResult(1, false)
		r.Equal([]byte{0, 0, 0, 1, 0}, *bp)
		Release(bp)

		bp = PackRequest(int32(i), -int32(i))
		r.Len(*bp, RequestSize)
		a, b, err := UnpackRequest(*bp)
		r.NoError(err)
		r.Equal(int32(i), a)
		r.Equal(-int32(i), b)
		Release(bp)
	}
}

func TestBinaryRejectsWrongLength(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short", []byte{1, 2, 3}},
		{"long", make([]byte, 9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := UnpackRequest(tc.buf); err == nil {
				t.Errorf("UnpackRequest(%v) expected error", tc.buf)
			}
			if _, _, err := UnpackResult(tc.buf); err == nil {
				t.Errorf("UnpackResult(%v) expected error", tc.buf)
			}
		})
	}
}

func TestDecodeAddRequest(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantID  string
		wantA   int32
		wantB   int32
		wantErr bool
	}{
		{"valid", `{"type":"add","id":"r1","a":2,"b":3}`, "r1", 2, 3, false},
		{"zero operands", `{"type":"add","a":0,"b":0}`, "", 0, 0, false},
		{"missing b", `{"type":"add","id":"r2","a":1}`, "r2", 0, 0, true},
		{"wrong type", `{"type":"sub","id":"r3","a":1,"b":1}`, "r3", 0, 0, true},
		{"out of range", `{"type":"add","id":"r4","a":2147483648,"b":1}`, "r4", 0, 0, true},
		{"not json", `add 1 2`, "", 0, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, id, err := DecodeAddRequest([]byte(tc.input))
			if id != tc.wantID {
				t.Errorf("id = %q, want %q", id, tc.wantID)
			}
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.A != tc.wantA || req.B != tc.wantB {
				t.Errorf("operands = (%d, %d), want (%d, %d)", req.A, req.B, tc.wantA, tc.wantB)
			}
		})
	}
}

func TestDecodeReply(t *testing.T) {
	r := require.New(t)

	data, err := json.Marshal(ResultMessage{Type: TypeResult, ID: "x", Sum: 5})
	r.NoError(err)
	res, errMsg, err := DecodeReply(data)
	r.NoError(err)
	r.Nil(errMsg)
	r.Equal(int32(5), res.Sum)

	data, err = json.Marshal(ErrorMessage{Type: TypeError, ID: "y", Error: "bad"})
	r.NoError(err)
	res, errMsg, err = DecodeReply(data)
	r.NoError(err)
	r.Nil(res)
	r.Equal("bad", errMsg.Error)

	_, _, err = DecodeReply([]byte(`{"type":"add"}`))
	r.Error(err)
}
