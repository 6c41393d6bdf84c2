package poly

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fine-structures/tuttex/internal/bigint"
)

func TestXAndYConstructors(t *testing.T) {
	require.Equal(t, "x^3", X(3).String())
	require.Equal(t, "x", X(1).String())
	require.Equal(t, "1", X(0).String())
	require.Equal(t, "y^2", Y(2).String())
}

func TestYRangeIsGeometricSum(t *testing.T) {
	p := YRange(0, 2)
	got := p.Substitute(bigint.FromUint64(0), bigint.FromUint64(3))
	// y^0 + y^1 + y^2 at y=3 => 1+3+9 = 13
	require.Equal(t, "13", got.String())
}

func TestAddMergesMonomials(t *testing.T) {
	p := Add(X(2), X(2))
	got := p.Substitute(bigint.FromUint64(5), bigint.Zero)
	require.Equal(t, "50", got.String()) // 2*5^2
}

func TestAddFlattensProducts(t *testing.T) {
	// (x+y) * (x+y) added to itself should flatten before merging.
	xy := Add(X(1), Y(1))
	prod := Mul(xy, xy)
	sum := Add(prod, prod)
	got := sum.Substitute(bigint.FromUint64(2), bigint.FromUint64(3))
	// (2+3)^2 = 25, doubled = 50
	require.Equal(t, "50", got.String())
}

func TestMulConcatenatesFactorsLazily(t *testing.T) {
	p := Mul(X(1), Y(1))
	got := p.Substitute(bigint.FromUint64(4), bigint.FromUint64(5))
	require.Equal(t, "20", got.String())
}

func TestMulElidesIdentityFactor(t *testing.T) {
	p := Mul(X(2), Y(0))
	require.Equal(t, "x^2", p.String())
}

func TestZeroPolyAbsorbsProducts(t *testing.T) {
	z := Zero()
	require.True(t, Mul(z, X(5)).IsZero())
	require.Equal(t, "x^5", Add(z, X(5)).String())
}

func TestCycleClosedForm(t *testing.T) {
	// T(C_n) = x^(n-1) + x^(n-2) + ... + x + y, here built directly to
	// sanity check Add/expand for a realistic shape (spec §8 property 4).
	n := int32(5)
	p := Y(1)
	for i := int32(1); i < n; i++ {
		p = Add(p, X(i))
	}
	got := p.Substitute(bigint.FromUint64(1), bigint.FromUint64(1))
	require.Equal(t, "5", got.String()) // (n-1) x-terms at x=1 plus one y-term at y=1
}

func TestSerializeRoundTrip(t *testing.T) {
	cases := []Poly{
		Zero(),
		One(),
		X(7),
		Add(X(2), Y(3)),
		Mul(X(1), Add(X(2), Y(1))),
	}
	for _, p := range cases {
		buf := p.Serialize(nil)
		got, n, err := Deserialize(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, p.String(), got.String())
	}
}

func TestSubstituteEvaluatesTreeIdentity(t *testing.T) {
	// T(tree with e edges) = x^e (spec §8 property 3).
	p := X(4)
	got := p.Substitute(bigint.FromUint64(2), bigint.FromUint64(99))
	require.Equal(t, "16", got.String())
}
