// Package oid implements the canonical representation of SNMP object
// identifiers used throughout snmpcheck: an ordered sequence of
// non-negative integers, compared lexicographically.
package oid

import (
	"strconv"
	"strings"
)

// OID is an ordered sequence of non-negative integers naming a variable in
// an SNMP agent's MIB. The zero value is the empty OID, which is a prefix of
// every OID (including itself).
//
// OID is comparable and usable as a map key: it is backed internally by a
// fixed-width encoding of its components in a plain string, chosen so that
// byte-wise string comparison agrees with lexicographic comparison of the
// underlying integer sequence.
type OID struct {
	key string
}

// New builds an OID from its integer components.
func New(components ...uint32) OID {
	return OID{key: encode(components)}
}

// FromInts builds an OID from int components, for convenience at call
// sites that don't naturally produce uint32 (e.g. parsed text).
func FromInts(components ...int) OID {
	u := make([]uint32, len(components))
	for i, c := range components {
		u[i] = uint32(c)
	}
	return New(u...)
}

const tokenLen = 4 // fixed-width big-endian uint32 per component

// encode produces a key whose byte-wise ordering matches lexicographic
// ordering of the component sequence: each component is a fixed 4-byte
// big-endian value, so byte comparison agrees with numeric comparison
// component-by-component, and (since every token has the same width) a
// proper-prefix sequence encodes to a proper-prefix string, which sorts
// before any string it prefixes — matching tuple comparison semantics where
// (1,2) < (1,2,3).
func encode(components []uint32) string {
	buf := make([]byte, 0, len(components)*tokenLen)
	for _, c := range components {
		buf = append(buf, byte(c>>24), byte(c>>16), byte(c>>8), byte(c))
	}
	return string(buf)
}

// decode reverses encode.
func decode(key string) []uint32 {
	n := len(key) / tokenLen
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		b := key[i*tokenLen : i*tokenLen+4]
		out[i] = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	return out
}

// Components returns the OID's integer components as a fresh slice.
func (o OID) Components() []uint32 {
	return decode(o.key)
}

// Len returns the number of components.
func (o OID) Len() int {
	return len(o.key) / tokenLen
}

// Empty reports whether the OID has zero components.
func (o OID) Empty() bool {
	return len(o.key) == 0
}

// Compare returns -1, 0, or 1 as o is lexicographically less than, equal to,
// or greater than other.
func (o OID) Compare(other OID) int {
	return strings.Compare(o.key, other.key)
}

// Less reports whether o sorts strictly before other.
func (o OID) Less(other OID) bool {
	return o.key < other.key
}

// Equal reports whether o and other name the same OID.
func (o OID) Equal(other OID) bool {
	return o.key == other.key
}

// HasPrefix reports whether prefix is a prefix of o, i.e. o's first
// len(prefix) components equal prefix's components.
func (o OID) HasPrefix(prefix OID) bool {
	return len(o.key) >= len(prefix.key) && o.key[:len(prefix.key)] == prefix.key
}

// Append returns a new OID with the given trailing components appended.
func (o OID) Append(components ...uint32) OID {
	return OID{key: o.key + encode(components)}
}

// Prev returns the immediate lexicographic predecessor of o: the last
// component is decremented, or dropped entirely if it is zero. Panics if o
// is empty, since the empty OID has no predecessor.
//
// Invariant: Prev(o).Less(o) holds for every non-empty o.
func (o OID) Prev() OID {
	if o.Empty() {
		panic("oid: Prev of empty OID")
	}
	comps := o.Components()
	last := comps[len(comps)-1]
	if last == 0 {
		return New(comps[:len(comps)-1]...)
	}
	comps[len(comps)-1] = last - 1
	return New(comps...)
}

// String renders the OID in dotted form, e.g. ".1.3.6.1.2.1.1.1.0".
func (o OID) String() string {
	comps := o.Components()
	var b strings.Builder
	for _, c := range comps {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return b.String()
}
