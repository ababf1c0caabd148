package biguint

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"
)

var incrementTestData = [][2][]byte{
	{{0}, {1}},
	{{1}, {2}},
	{{255}, {0}},
	{{0, 0}, {1, 0}},
	{{1, 0}, {2, 0}},
	{{255, 0}, {0, 1}},
	{{255, 1}, {0, 2}},
	{{255, 255}, {0, 0}},
	{{255, 255, 0}, {0, 0, 1}},
	{{}, {}},
}

func TestIncrement(t *testing.T) {
	for _, d := range incrementTestData {
		actual := append([]byte{}, d[0]...)
		Increment(actual)
		if !bytes.Equal(actual, d[1]) {
			t.Fatalf("%v + 1 == %v != %v", d[0], actual, d[1])
		}
	}
}

func TestIncrementByLargeValue(t *testing.T) {
	n := make([]byte, 8)
	IncrementBy(n, math.MaxInt64)
	expected := []byte{255, 255, 255, 255, 255, 255, 255, 127}
	if !bytes.Equal(n, expected) {
		t.Fatalf("got %v, want %v", n, expected)
	}
}

func TestIncrementByMaxUint64(t *testing.T) {
	n := []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	IncrementBy(n, math.MaxUint64)
	// 1 + (2^64-1) = 2^64
	expected := []byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 0}
	if !bytes.Equal(n, expected) {
		t.Fatalf("got %v, want %v", n, expected)
	}
}

func TestIncrementByTruncatesAmount(t *testing.T) {
	// Only the low 16 bits of the amount fit; the rest is discarded.
	n := []byte{0xff, 0xff}
	IncrementBy(n, 0x0102_0002)
	if !bytes.Equal(n, []byte{1, 0}) {
		t.Fatalf("got %v", n)
	}
}

func TestIncrementByMatchesBigInt(t *testing.T) {
	amounts := []uint64{0, 1, 255, 256, 0xdeadbeef, math.MaxUint32, math.MaxUint64}
	starts := [][]byte{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f},
		{0x10, 0x32, 0x54, 0x76, 0x98, 0xba, 0xdc, 0xfe, 0, 0, 0, 0},
		{0xff, 0xff, 0xff},
	}
	for _, start := range starts {
		for _, amount := range amounts {
			n := append([]byte{}, start...)
			IncrementBy(n, amount)

			want := new(big.Int).Add(toBig(start), new(big.Int).SetUint64(amount))
			want.Mod(want, modulus(len(start)))
			if toBig(n).Cmp(want) != 0 {
				t.Fatalf("%x + %d: got %x, want %x", start, amount, n, want)
			}
		}
	}
}

func TestIncrementFullBufferWraps(t *testing.T) {
	n := bytes.Repeat([]byte{0xff}, 16)
	Increment(n)
	if !IsZero(n) {
		t.Fatalf("expected wrap to zero, got %v", n)
	}
}

func TestEquals(t *testing.T) {
	if !Equals([]byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}) {
		t.Fatalf("equal buffers reported unequal")
	}
	if Equals([]byte{1, 2, 3, 4}, []byte{4, 3, 2, 1}) {
		t.Fatalf("different buffers reported equal")
	}
	if Equals([]byte{1, 2, 3, 4}, []byte{1, 2, 3}) {
		t.Fatalf("different lengths reported equal")
	}
	if !Equals(nil, []byte{}) {
		t.Fatalf("empty buffers should be equal")
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero([]byte{0, 0, 0, 0}) {
		t.Fatalf("zero buffer not zero")
	}
	if IsZero([]byte{1, 0, 0, 0}) {
		t.Fatalf("non-zero buffer reported zero")
	}
	if IsZero([]byte{0, 0, 0, 0x80}) {
		t.Fatalf("high byte ignored")
	}
	if !IsZero(nil) {
		t.Fatalf("empty buffer should be zero")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b []byte
		want int
	}{
		{[]byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}, 0},
		{[]byte{4, 3, 2, 1}, []byte{1, 2, 3, 4}, -1},
		{[]byte{1, 2, 3, 4}, []byte{4, 3, 2, 1}, 1},
		{[]byte{0xff, 0, 0, 0}, []byte{0, 1, 0, 0}, -1},
		{[]byte{0, 0, 0, 1}, []byte{0xff, 0xff, 0xff, 0}, 1},
		{[]byte{}, []byte{}, 0},
		{[]byte{0x80}, []byte{0x7f}, 1},
	}
	for _, tt := range tests {
		got, err := Compare(tt.a, tt.b)
		if err != nil {
			t.Fatalf("Compare(%v, %v): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Fatalf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareConsistentWithEquals(t *testing.T) {
	var a, b [2]byte
	for x := 0; x < 1<<16; x += 251 {
		for y := 0; y < 1<<16; y += 241 {
			a[0], a[1] = byte(x), byte(x>>8)
			b[0], b[1] = byte(y), byte(y>>8)
			c, err := Compare(a[:], b[:])
			if err != nil {
				t.Fatalf("Compare: %v", err)
			}
			want := 0
			if x < y {
				want = -1
			} else if x > y {
				want = 1
			}
			if c != want {
				t.Fatalf("Compare(%d, %d) = %d, want %d", x, y, c, want)
			}
			if Equals(a[:], b[:]) != (c == 0) {
				t.Fatalf("Equals and Compare disagree on %d, %d", x, y)
			}
		}
	}
}

func TestLengthMismatch(t *testing.T) {
	a := []byte{1, 0, 0, 0}
	b := []byte{1, 0, 0}

	if _, err := Compare(a, b); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Compare: expected ErrLengthMismatch, got %v", err)
	}
	if err := Add(a, b); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Add: expected ErrLengthMismatch, got %v", err)
	}
	if err := Subtract(a, b); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Subtract: expected ErrLengthMismatch, got %v", err)
	}
	if !bytes.Equal(a, []byte{1, 0, 0, 0}) {
		t.Fatalf("operand modified on error: %v", a)
	}
}

func TestAdd(t *testing.T) {
	a := []byte{1, 0, 0, 0}
	if err := Add(a, []byte{1, 0, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !bytes.Equal(a, []byte{2, 0, 0, 0}) {
		t.Fatalf("got %v", a)
	}

	a = []byte{0xff, 0xff, 0, 0}
	if err := Add(a, []byte{1, 0, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !bytes.Equal(a, []byte{0, 0, 1, 0}) {
		t.Fatalf("carry not propagated: %v", a)
	}

	a = []byte{0xff, 0xff}
	if err := Add(a, []byte{2, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !bytes.Equal(a, []byte{1, 0}) {
		t.Fatalf("overflow did not wrap: %v", a)
	}
}

func TestSubtract(t *testing.T) {
	a := []byte{2, 0, 0, 0}
	if err := Subtract(a, []byte{1, 0, 0, 0}); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if !bytes.Equal(a, []byte{1, 0, 0, 0}) {
		t.Fatalf("got %v", a)
	}

	a = []byte{0, 0, 1, 0}
	if err := Subtract(a, []byte{1, 0, 0, 0}); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if !bytes.Equal(a, []byte{0xff, 0xff, 0, 0}) {
		t.Fatalf("borrow not propagated: %v", a)
	}

	a = []byte{0, 0}
	if err := Subtract(a, []byte{1, 0}); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if !bytes.Equal(a, []byte{0xff, 0xff}) {
		t.Fatalf("underflow did not wrap: %v", a)
	}
}

func TestAddSubtractRoundTrip(t *testing.T) {
	a := []byte{0x10, 0x32, 0x54, 0x76, 0x98, 0xba, 0xdc, 0xfe}
	b := []byte{0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01}
	orig := append([]byte{}, a...)

	// Wraps: a + b exceeds 2^64, subtraction restores it anyway.
	if err := Add(a, b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := Subtract(a, b); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if !bytes.Equal(a, orig) {
		t.Fatalf("round trip mismatch: %x != %x", a, orig)
	}
}

func TestAddSubtractMatchBigInt(t *testing.T) {
	vectors := [][2][]byte{
		{{0x01, 0x02, 0x03}, {0xff, 0xfe, 0xfd}},
		{{0xff, 0xff, 0xff}, {0xff, 0xff, 0xff}},
		{{0x00, 0x00, 0x00}, {0x01, 0x00, 0x80}},
		{{0x12, 0x34, 0x56}, {0x12, 0x34, 0x56}},
	}
	for _, v := range vectors {
		m := modulus(len(v[0]))

		sum := append([]byte{}, v[0]...)
		if err := Add(sum, v[1]); err != nil {
			t.Fatalf("Add: %v", err)
		}
		want := new(big.Int).Add(toBig(v[0]), toBig(v[1]))
		want.Mod(want, m)
		if toBig(sum).Cmp(want) != 0 {
			t.Fatalf("%x + %x: got %x, want %x", v[0], v[1], sum, want)
		}

		diff := append([]byte{}, v[0]...)
		if err := Subtract(diff, v[1]); err != nil {
			t.Fatalf("Subtract: %v", err)
		}
		want = new(big.Int).Sub(toBig(v[0]), toBig(v[1]))
		want.Mod(want, m)
		if toBig(diff).Cmp(want) != 0 {
			t.Fatalf("%x - %x: got %x, want %x", v[0], v[1], diff, want)
		}
	}
}

func TestOperationsDoNotAllocate(t *testing.T) {
	a := make([]byte, 32)
	b := make([]byte, 32)
	b[0] = 7
	allocs := testing.AllocsPerRun(100, func() {
		IncrementBy(a, 12345)
		_ = Add(a, b)
		_ = Subtract(a, b)
		_, _ = Compare(a, b)
		_ = Equals(a, b)
		_ = IsZero(a)
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations, got %v", allocs)
	}
}

// toBig interprets a little-endian buffer.
func toBig(n []byte) *big.Int {
	be := make([]byte, len(n))
	for i, d := range n {
		be[len(n)-1-i] = d
	}
	return new(big.Int).SetBytes(be)
}

func modulus(length int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(8*length))
}

func BenchmarkIncrement(b *testing.B) {
	n := make([]byte, 24)
	b.SetBytes(int64(len(n)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Increment(n)
	}
}

func BenchmarkCompare(b *testing.B) {
	x := make([]byte, 32)
	y := make([]byte, 32)
	y[31] = 1
	b.SetBytes(int64(len(x)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Compare(x, y)
	}
}
