// Package poly implements FactorPoly: a bivariate polynomial in x, y stored
// as a product of factor groups, each a sum of monomials with a
// bigint.Uint coefficient. Products concatenate factor groups lazily; only
// an additive merge forces expansion into a single flattened group. This is
// what keeps delete-contract's P_del + P_con cheap to store and the cache's
// serialized entries small, per spec §4.B.
package poly

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/trees/redblacktree"

	"github.com/fine-structures/tuttex/internal/bigint"
)

// Monomial is the exponent pair (xpow, ypow) that keys a term within a
// factor group.
type Monomial struct {
	XPow, YPow int32
}

func monomialComparator(a, b interface{}) int {
	ma, mb := a.(Monomial), b.(Monomial)
	if ma.XPow != mb.XPow {
		return int(ma.XPow - mb.XPow)
	}
	return int(ma.YPow - mb.YPow)
}

// factorGroup is a sum of monomials with distinct exponent pairs, stored in
// a red-black tree ordered by (xpow, ypow) so str() and Serialize() never
// need a separate sort pass -- mirrors the ordered FactorSet of the teacher's
// lib2x3/factor.go.
type factorGroup struct {
	terms *redblacktree.Tree
}

func newFactorGroup() *factorGroup {
	return &factorGroup{terms: redblacktree.NewWith(monomialComparator)}
}

func (g *factorGroup) clone() *factorGroup {
	out := newFactorGroup()
	it := g.terms.Iterator()
	for it.Next() {
		out.terms.Put(it.Key(), it.Value())
	}
	return out
}

func (g *factorGroup) add(m Monomial, c bigint.Uint) {
	if existing, found := g.terms.Get(m); found {
		g.terms.Put(m, bigint.Add(existing.(bigint.Uint), c))
	} else {
		g.terms.Put(m, c)
	}
}

// isTrivialOne reports whether this group is exactly the constant 1 (a
// single term at (0,0) with coefficient 1). Such groups never change a
// product's value and are elided when multiplying to keep factor lists from
// growing unboundedly from repeated RF = Y(0) multiplications (spec §4.F).
func (g *factorGroup) isTrivialOne() bool {
	if g.terms.Size() != 1 {
		return false
	}
	v, found := g.terms.Get(Monomial{0, 0})
	return found && v.(bigint.Uint).IsOne()
}

// Poly is a Tutte/chromatic/flow polynomial value: either the zero
// polynomial (spec's "empty/zero polynomial", which engine.Reduce returns
// when its timeout fires) or a non-empty product of factor groups.
type Poly struct {
	isZero bool
	groups []*factorGroup
}

// Zero returns the zero polynomial P().
func Zero() Poly { return Poly{isZero: true} }

// One returns the multiplicative identity (x^0 y^0 = 1).
func One() Poly { return X(0) }

// X returns x^n as a single-factor, single-term polynomial.
func X(n int32) Poly {
	g := newFactorGroup()
	g.add(Monomial{XPow: n}, bigint.One)
	return Poly{groups: []*factorGroup{g}}
}

// Y returns y^n as a single-factor, single-term polynomial.
func Y(n int32) Poly {
	g := newFactorGroup()
	g.add(Monomial{YPow: n}, bigint.One)
	return Poly{groups: []*factorGroup{g}}
}

// YRange returns y^a + y^(a+1) + ... + y^b, the geometric range used to
// expand a multiplicity-k multi-edge (spec §3, "Y(a,b)").
func YRange(a, b int32) Poly {
	g := newFactorGroup()
	for p := a; p <= b; p++ {
		g.add(Monomial{YPow: p}, bigint.One)
	}
	return Poly{groups: []*factorGroup{g}}
}

// XCoeff returns c*x^n as a single-factor, single-term polynomial.
func XCoeff(c bigint.Uint, n int32) Poly {
	g := newFactorGroup()
	g.add(Monomial{XPow: n}, c)
	return Poly{groups: []*factorGroup{g}}
}

// IsZero reports whether p is the zero polynomial.
func (p Poly) IsZero() bool { return p.isZero }

func cloneGroups(groups []*factorGroup) []*factorGroup {
	out := make([]*factorGroup, len(groups))
	for i, g := range groups {
		out[i] = g.clone()
	}
	return out
}

// expand flattens p into a single factor group by convolving every group's
// monomial map together.
func (p Poly) expand() *factorGroup {
	if p.isZero || len(p.groups) == 0 {
		return newFactorGroup()
	}
	acc := newFactorGroup()
	acc.add(Monomial{}, bigint.One)
	for _, g := range p.groups {
		next := newFactorGroup()
		ait := acc.terms.Iterator()
		for ait.Next() {
			am := ait.Key().(Monomial)
			ac := ait.Value().(bigint.Uint)
			git := g.terms.Iterator()
			for git.Next() {
				gm := git.Key().(Monomial)
				gc := git.Value().(bigint.Uint)
				next.add(Monomial{XPow: am.XPow + gm.XPow, YPow: am.YPow + gm.YPow}, bigint.Mul(ac, gc))
			}
		}
		acc = next
	}
	return acc
}

// Add returns p + q, the sum used by delete-contract (spec §4.B). If both
// operands are single-factor already, their monomial maps merge directly;
// otherwise both operands are expanded to single-factor form first. The
// result is always single-factor.
func Add(p, q Poly) Poly {
	if p.isZero {
		return q
	}
	if q.isZero {
		return p
	}
	var pg, qg *factorGroup
	if len(p.groups) == 1 {
		pg = p.groups[0]
	} else {
		pg = p.expand()
	}
	if len(q.groups) == 1 {
		qg = q.groups[0]
	} else {
		qg = q.expand()
	}
	sum := pg.clone()
	it := qg.terms.Iterator()
	for it.Next() {
		sum.add(it.Key().(Monomial), it.Value().(bigint.Uint))
	}
	return Poly{groups: []*factorGroup{sum}}
}

// Add returns p + q. Method form for fluent call sites.
func (p Poly) Add(q Poly) Poly { return Add(p, q) }

// Mul returns p * q by concatenating factor groups without expansion --
// the operation that preserves the factored structure (spec §4.B).
func Mul(p, q Poly) Poly {
	if p.isZero || q.isZero {
		return Zero()
	}
	var out []*factorGroup
	for _, g := range p.groups {
		if !g.isTrivialOne() {
			out = append(out, g.clone())
		}
	}
	for _, g := range q.groups {
		if !g.isTrivialOne() {
			out = append(out, g.clone())
		}
	}
	if len(out) == 0 {
		// Both operands were the multiplicative identity.
		return One()
	}
	return Poly{groups: out}
}

// Mul returns p * q. Method form for fluent call sites.
func (p Poly) Mul(q Poly) Poly { return Mul(p, q) }

// Substitute evaluates p numerically at (x0, y0).
func (p Poly) Substitute(x0, y0 bigint.Uint) bigint.Uint {
	if p.isZero {
		return bigint.Zero
	}
	result := bigint.One
	for _, g := range p.groups {
		sum := bigint.Zero
		it := g.terms.Iterator()
		for it.Next() {
			m := it.Key().(Monomial)
			c := it.Value().(bigint.Uint)
			term := bigint.Mul(c, bigint.Mul(bigint.Pow(x0, uint(m.XPow)), bigint.Pow(y0, uint(m.YPow))))
			sum = bigint.Add(sum, term)
		}
		result = bigint.Mul(result, sum)
	}
	return result
}

func monomialString(m Monomial, c bigint.Uint) string {
	var parts []string
	if !c.IsOne() || (m.XPow == 0 && m.YPow == 0) {
		parts = append(parts, c.String())
	}
	if m.XPow == 1 {
		parts = append(parts, "x")
	} else if m.XPow != 0 {
		parts = append(parts, fmt.Sprintf("x^%d", m.XPow))
	}
	if m.YPow == 1 {
		parts = append(parts, "y")
	} else if m.YPow != 0 {
		parts = append(parts, fmt.Sprintf("y^%d", m.YPow))
	}
	return strings.Join(parts, "")
}

func (g *factorGroup) str() string {
	var terms []string
	it := g.terms.Iterator()
	for it.Next() {
		m := it.Key().(Monomial)
		c := it.Value().(bigint.Uint)
		terms = append(terms, monomialString(m, c))
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}

// String renders p in canonical textual form: a product of parenthesized
// sums, one per factor group (no parens around a lone group).
func (p Poly) String() string {
	if p.isZero {
		return "0"
	}
	if len(p.groups) == 0 {
		return "1"
	}
	if len(p.groups) == 1 {
		return p.groups[0].str()
	}
	parts := make([]string, len(p.groups))
	for i, g := range p.groups {
		parts[i] = "(" + g.str() + ")"
	}
	return strings.Join(parts, "*")
}
