package bigint

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddSmall(t *testing.T) {
	got := Add(FromUint64(2), FromUint64(3))
	require.Equal(t, "5", got.String())
}

func TestAddOverflowsToWords(t *testing.T) {
	max := FromUint64(^uint64(0))
	got := Add(max, FromUint64(1))
	require.False(t, got.isSmall())
	require.Equal(t, "18446744073709551616", got.String())
}

func TestMulSmall(t *testing.T) {
	got := Mul(FromUint64(6), FromUint64(7))
	require.Equal(t, "42", got.String())
}

func TestMulProducesBigWords(t *testing.T) {
	a := FromUint64(1 << 40)
	b := FromUint64(1 << 40)
	got := Mul(a, b)
	require.False(t, got.isSmall())
	require.Equal(t, "1208925819614629174706176", got.String()) // 2^80
}

func TestPow(t *testing.T) {
	got := Pow(FromUint64(2), 100)
	require.Equal(t, "1267650600228229401496703205376", got.String())
}

func TestPowZeroExponent(t *testing.T) {
	require.True(t, Pow(FromUint64(5), 0).IsOne())
}

func TestCmp(t *testing.T) {
	require.Equal(t, -1, Cmp(FromUint64(2), FromUint64(3)))
	require.Equal(t, 0, Cmp(FromUint64(3), FromUint64(3)))
	require.Equal(t, 1, Cmp(FromUint64(4), FromUint64(3)))

	big1 := Pow(FromUint64(2), 200)
	big2 := Pow(FromUint64(2), 199)
	require.True(t, Less(big2, big1))
}

func TestRoundTripBytes(t *testing.T) {
	values := []Uint{
		Zero,
		One,
		FromUint64(12345),
		Pow(FromUint64(3), 500),
	}
	for _, v := range values {
		buf := v.AppendBytes(nil)
		got, n, err := DecodeBytes(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.True(t, Equal(v, got), "want %s got %s", v.String(), got.String())
	}
}

// TestAgainstFactorial checks accumulated multiplication against a known
// closed form (20! is small enough to hardcode and is the largest factorial
// that still fits a single uint64 word).
func TestAgainstFactorial(t *testing.T) {
	acc := One
	for i := uint64(1); i <= 20; i++ {
		acc = Mul(acc, FromUint64(i))
	}
	require.Equal(t, "2432902008176640000", acc.String())
}

// TestAddCommutesAgainstRandomWalk exercises many random small additions and
// checks the running total agrees regardless of add order (commutativity),
// a property the delete-contract recurrence relies on implicitly.
func TestAddCommutesAgainstRandomWalk(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	var terms []Uint
	for i := 0; i < 50; i++ {
		terms = append(terms, FromUint64(uint64(r.Intn(1<<20))))
	}
	forward := Zero
	for _, t2 := range terms {
		forward = Add(forward, t2)
	}
	backward := Zero
	for i := len(terms) - 1; i >= 0; i-- {
		backward = Add(backward, terms[i])
	}
	require.True(t, Equal(forward, backward))
}
