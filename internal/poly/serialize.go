package poly

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/fine-structures/tuttex/internal/bigint"
)

// ErrShortBuffer is returned by Deserialize when buf ends before a complete
// Poly has been read.
var ErrShortBuffer = errors.New("poly: short buffer")

// Serialize appends p's wire encoding to buf, per spec §6: a leading
// zero/non-zero flag byte, then (for a non-zero Poly) a factor-group count
// varint followed by, per group, a monomial count varint and then each
// monomial's (xpow, ypow, coefficient).
func (p Poly) Serialize(buf []byte) []byte {
	if p.isZero {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	buf = appendUvarint(buf, uint64(len(p.groups)))
	for _, g := range p.groups {
		buf = appendUvarint(buf, uint64(g.terms.Size()))
		it := g.terms.Iterator()
		for it.Next() {
			m := it.Key().(Monomial)
			c := it.Value().(bigint.Uint)
			buf = appendVarint(buf, int64(m.XPow))
			buf = appendVarint(buf, int64(m.YPow))
			buf = c.AppendBytes(buf)
		}
	}
	return buf
}

// Deserialize reads a Poly written by Serialize, returning the value and the
// number of bytes consumed.
func Deserialize(buf []byte) (Poly, int, error) {
	if len(buf) == 0 {
		return Poly{}, 0, ErrShortBuffer
	}
	off := 1
	if buf[0] == 0 {
		return Zero(), off, nil
	}

	numGroups, n, err := readUvarint(buf[off:])
	if err != nil {
		return Poly{}, 0, err
	}
	off += n

	groups := make([]*factorGroup, numGroups)
	for gi := range groups {
		numTerms, n, err := readUvarint(buf[off:])
		if err != nil {
			return Poly{}, 0, err
		}
		off += n

		g := newFactorGroup()
		for ti := uint64(0); ti < numTerms; ti++ {
			xpow, n, err := readVarint(buf[off:])
			if err != nil {
				return Poly{}, 0, err
			}
			off += n
			ypow, n, err := readVarint(buf[off:])
			if err != nil {
				return Poly{}, 0, err
			}
			off += n
			c, n, err := bigint.DecodeBytes(buf[off:])
			if err != nil {
				return Poly{}, 0, err
			}
			off += n
			g.add(Monomial{XPow: int32(xpow), YPow: int32(ypow)}, c)
		}
		groups[gi] = g
	}
	return Poly{groups: groups}, off, nil
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func appendVarint(buf []byte, v int64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func readUvarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, ErrShortBuffer
	}
	return v, n, nil
}

func readVarint(buf []byte) (int64, int, error) {
	v, n := binary.Varint(buf)
	if n <= 0 {
		return 0, 0, ErrShortBuffer
	}
	return v, n, nil
}
