package poly

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/fine-structures/tuttex/internal/bigint"
)

// toBig converts a non-negative bigint.Uint to a math/big.Int. Used only by
// the chromatic/flow specializations below, where a genuinely signed result
// is unavoidable: expanding (1-x)^n alternates sign by construction, and
// bigint.Uint is deliberately non-negative-only everywhere else in this
// module (see internal/bigint's own design note). This is the one boundary
// where that contract would have to be broken to stay in-house, so it
// borrows the standard library's signed integer here instead.
func toBig(u bigint.Uint) *big.Int {
	v := new(big.Int)
	v.SetString(u.String(), 10)
	return v
}

// binomialTriangle returns Pascal's triangle up to row n, built by repeated
// big.Int addition -- the same reason bigint.Uint itself never grew a
// division operation: the additive recurrence needs none.
func binomialTriangle(n int32) [][]*big.Int {
	rows := make([][]*big.Int, n+1)
	for i := int32(0); i <= n; i++ {
		row := make([]*big.Int, i+1)
		row[0] = big.NewInt(1)
		row[i] = big.NewInt(1)
		for k := int32(1); k < i; k++ {
			row[k] = new(big.Int).Add(rows[i-1][k-1], rows[i-1][k])
		}
		rows[i] = row
	}
	return rows
}

// SignedUnivariate is a polynomial in one variable with signed big.Int
// coefficients, keyed by exponent -- the result of specializing a
// FactorPoly down to the chromatic or flow polynomial (spec §6).
type SignedUnivariate map[int32]*big.Int

func (s SignedUnivariate) addTerm(pow int32, c *big.Int) {
	if c.Sign() == 0 {
		return
	}
	if cur, ok := s[pow]; ok {
		cur.Add(cur, c)
		if cur.Sign() == 0 {
			delete(s, pow)
		}
		return
	}
	s[pow] = new(big.Int).Set(c)
}

// expandTerms flattens p into a plain exponent-pair -> coefficient map,
// exposing the same data internal Add already computes for itself.
func (p Poly) expandTerms() map[Monomial]bigint.Uint {
	g := p.expand()
	out := make(map[Monomial]bigint.Uint)
	it := g.terms.Iterator()
	for it.Next() {
		out[it.Key().(Monomial)] = it.Value().(bigint.Uint)
	}
	return out
}

// ChromaticFrom specializes the Tutte polynomial p into the chromatic
// polynomial, per spec §6: `CP[n] := (-1)^(V-C) * x * tutte(1-x, *)`.
// Substituting y=0 kills every monomial with YPow != 0 (0^b is 0 unless
// b==0); substituting x=1-x into what remains is a binomial expansion; the
// trailing *x shifts every resulting power up by one.
func ChromaticFrom(t Poly, vertices, components int) SignedUnivariate {
	return specialize(t, true, vertices-components, 1)
}

// FlowFrom specializes the Tutte polynomial p into the flow polynomial, per
// spec §6: `FP[n] := (-1)^((E-V)+C) * tutte(*, 1-x)`. Substituting x=0
// kills every monomial with XPow != 0 -- which is exactly how this
// specialization reproduces the engine's "tree-kills-branch" rule without
// a dedicated structural check: a graph with a bridge has a Tutte
// polynomial divisible by x (spec §8 property 6), so it vanishes here.
func FlowFrom(t Poly, edges, vertices, components int) SignedUnivariate {
	return specialize(t, false, (edges-vertices)+components, 0)
}

// specialize implements both ChromaticFrom and FlowFrom: keepX selects
// which variable survives the y=0 / x=0 substitution (true keeps the
// x-power monomials and substitutes x->1-x, false keeps the y-power
// monomials and substitutes y->1-x); parity is the exponent of the sign
// (-1)^parity; shift is the extra power of x multiplied in afterwards (1
// for chromatic's trailing "* x", 0 for flow).
func specialize(t Poly, keepX bool, parity int, shift int32) SignedUnivariate {
	out := make(SignedUnivariate)
	terms := t.expandTerms()

	var maxPow int32
	for m, c := range terms {
		if c.IsZero() {
			continue
		}
		pow := m.YPow
		if keepX {
			pow = m.XPow
		}
		other := m.XPow
		if keepX {
			other = m.YPow
		}
		if other != 0 {
			continue
		}
		if pow > maxPow {
			maxPow = pow
		}
	}
	tri := binomialTriangle(maxPow)
	negSign := ((parity%2)+2)%2 != 0 // normalize: Go's % keeps the dividend's sign

	for m, c := range terms {
		if c.IsZero() {
			continue
		}
		pow := m.YPow
		other := m.XPow
		if keepX {
			pow, other = m.XPow, m.YPow
		}
		if other != 0 {
			continue
		}
		mag := toBig(c)
		row := tri[pow]
		for k := int32(0); k <= pow; k++ {
			term := new(big.Int).Mul(mag, row[k])
			neg := k%2 != 0
			if negSign {
				neg = !neg
			}
			if neg {
				term.Neg(term)
			}
			out.addTerm(k+shift, term)
		}
	}
	return out
}

// String renders s as a signed sum of x-powers in descending exponent
// order, e.g. "x^3 - 2x^2 + x".
func (s SignedUnivariate) String() string {
	if len(s) == 0 {
		return "0"
	}
	pows := make([]int32, 0, len(s))
	for p := range s {
		pows = append(pows, p)
	}
	sort.Slice(pows, func(i, j int) bool { return pows[i] > pows[j] })

	var b strings.Builder
	for i, p := range pows {
		c := s[p]
		neg := c.Sign() < 0
		mag := new(big.Int).Abs(c)
		if i == 0 {
			if neg {
				b.WriteString("-")
			}
		} else if neg {
			b.WriteString(" - ")
		} else {
			b.WriteString(" + ")
		}
		switch {
		case p == 0:
			b.WriteString(mag.String())
		case mag.Cmp(big.NewInt(1)) == 0 && p == 1:
			b.WriteString("x")
		case mag.Cmp(big.NewInt(1)) == 0:
			b.WriteString(fmt.Sprintf("x^%d", p))
		case p == 1:
			b.WriteString(fmt.Sprintf("%sx", mag.String()))
		default:
			b.WriteString(fmt.Sprintf("%sx^%d", mag.String(), p))
		}
	}
	return b.String()
}
