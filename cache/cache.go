// Package cache implements the OID-interval cache described in spec.md
// §4.1: it answers both point (Get) and successor (GetNext) queries from
// the union of directly-known values and intervals proven empty by prior
// GETBULK walks.
package cache

import (
	"errors"
	"sort"

	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

// ErrNotCached signals that the requested object is not present in the
// cache. Per spec.md §7 this error is internal to the cache<->engine
// interaction and must never reach a plugin.
var ErrNotCached = errors.New("cache: not cached")

// nextEntry is a proven assertion: "the next OID strictly greater than Low
// is High, and the open interval (Low, High) is empty." Entries are kept
// sorted ascending by Low with pairwise-disjoint open intervals.
type nextEntry struct {
	low, high oid.OID
}

// ObjectCache is an unlimited cache for SNMP GET/GETNEXT results, as
// described in spec.md §3-4.1. The zero value is ready to use.
type ObjectCache struct {
	values map[oid.OID]snmpval.Value
	nexts  []nextEntry // sorted ascending by low, pairwise-disjoint intervals
	last   *oid.OID    // if set, no OID strictly greater than *last exists
}

// New returns an empty ObjectCache.
func New() *ObjectCache {
	return &ObjectCache{values: make(map[oid.OID]snmpval.Value)}
}

func (c *ObjectCache) ensure() {
	if c.values == nil {
		c.values = make(map[oid.OID]snmpval.Value)
	}
}

// Get returns the value stored for o, or the NoSuchObject sentinel if some
// proven-empty interval spans o, or ErrNotCached if neither is known.
func (c *ObjectCache) Get(o oid.OID) (snmpval.Value, error) {
	c.ensure()
	if v, ok := c.values[o]; ok {
		return v, nil
	}
	if i, ok := c.findSpanning(o); ok {
		_ = i
		return snmpval.NoSuchObject, nil
	}
	return nil, ErrNotCached
}

// findSpanning returns the index of the nextEntry whose open interval
// (low, high) strictly contains o, if any.
func (c *ObjectCache) findSpanning(o oid.OID) (int, bool) {
	// c.nexts is sorted by low; find the last entry with low < o.
	i := sort.Search(len(c.nexts), func(i int) bool { return !c.nexts[i].low.Less(o) })
	// i is the first entry with low >= o; the candidate is i-1.
	if i == 0 {
		return -1, false
	}
	cand := c.nexts[i-1]
	if cand.low.Less(o) && o.Less(cand.high) {
		return i - 1, true
	}
	return -1, false
}

// GetNext returns the next OID strictly greater than o and its value, or
// ErrNotCached if no entry covers o and no Last assertion applies.
func (c *ObjectCache) GetNext(o oid.OID) (oid.OID, snmpval.Value, error) {
	c.ensure()
	if c.last != nil && !o.Less(*c.last) {
		return o, snmpval.EndOfMibView, nil
	}
	// find entry with low <= o < high
	i := sort.Search(len(c.nexts), func(i int) bool { return o.Less(c.nexts[i].low) })
	// i is the first entry with low > o; candidate is i-1.
	if i == 0 {
		return oid.OID{}, nil, ErrNotCached
	}
	cand := c.nexts[i-1] // cand.low <= o by construction of i
	if o.Less(cand.high) {
		v, err := c.Get(cand.high)
		if err != nil {
			return oid.OID{}, nil, err
		}
		return cand.high, v, nil
	}
	return oid.OID{}, nil, ErrNotCached
}

// Set stores the value bound to o. It does not touch the nexts list.
func (c *ObjectCache) Set(o oid.OID, v snmpval.Value) {
	c.ensure()
	c.values[o] = v
}

// SetNext installs the assertion "the successor of o is n", with o < n,
// preserving the disjoint-interval invariant per spec.md §4.1's 4-step
// algorithm.
func (c *ObjectCache) SetNext(o, n oid.OID) {
	c.ensure()
	if !o.Less(n) {
		panic("cache: SetNext requires o < n")
	}

	// 1. clear last if it lies behind the new assertion's high endpoint.
	if c.last != nil && c.last.Less(n) {
		c.last = nil
	}

	// 2. remove every existing entry whose low endpoint lies in [o, n).
	i := sort.Search(len(c.nexts), func(i int) bool { return !c.nexts[i].low.Less(o) })
	for i < len(c.nexts) && c.nexts[i].low.Less(n) {
		c.nexts = append(c.nexts[:i], c.nexts[i+1:]...)
	}

	// 3. scan backwards, removing entries whose high endpoint lies above o
	// (those ending in (o, n], and an entry that straddles the whole new
	// interval), so that no remaining interval overlaps (o, n).
	j := i - 1
	for j >= 0 && o.Less(c.nexts[j].high) {
		if c.nexts[j].low.Less(o) && c.nexts[j].high.Equal(n) {
			// an existing entry (o', n) with o' < o already covers the new
			// interval: discard the new assertion entirely.
			return
		}
		c.nexts = append(c.nexts[:j], c.nexts[j+1:]...)
		j--
	}
	insertAt := j + 1

	// 4. insert the new entry at the correct sorted position.
	entry := nextEntry{low: o, high: n}
	c.nexts = append(c.nexts, nextEntry{})
	copy(c.nexts[insertAt+1:], c.nexts[insertAt:])
	c.nexts[insertAt] = entry
}

// SetNextValue is SetNext(o, n) followed by Set(n, v).
func (c *ObjectCache) SetNextValue(o, n oid.OID, v snmpval.Value) {
	c.SetNext(o, n)
	c.Set(n, v)
}

// SetEnd asserts that no OID strictly greater than o exists. A tighter
// (lower) existing Last assertion is retained.
func (c *ObjectCache) SetEnd(o oid.OID) {
	c.ensure()
	if c.last != nil && !o.Less(*c.last) {
		return
	}
	c.trimEntriesAbove(o)
	v := o
	c.last = &v
}

// trimEntriesAbove removes every trailing entry whose high endpoint is
// strictly greater than o; cache invariants guarantee only a trailing run
// can violate this once Last is set to o.
func (c *ObjectCache) trimEntriesAbove(o oid.OID) {
	for len(c.nexts) > 0 && o.Less(c.nexts[len(c.nexts)-1].high) {
		c.nexts = c.nexts[:len(c.nexts)-1]
	}
}

// Invalidate removes any stored value for o and the NextEntry spanning o,
// if any. If o lay beyond the known Last boundary, Last is cleared too.
func (c *ObjectCache) Invalidate(o oid.OID) {
	c.ensure()
	delete(c.values, o)
	if c.last != nil && !o.Less(*c.last) {
		c.last = nil
		return
	}
	if i, ok := c.findSpanning(o); ok {
		c.nexts = append(c.nexts[:i], c.nexts[i+1:]...)
		return
	}
	// also handle o being exactly a low or high endpoint of some entry: per
	// spec.md this is "the NextEntry that spans o" which for an endpoint
	// value itself does not apply (o is a known boundary, not an interior
	// point of the open interval), so nothing further to do.
}

// Pair is an (OID, Value) binding, the unit FromPairs consumes.
type Pair struct {
	OID   oid.OID
	Value snmpval.Value
}

// FromPairs builds an ObjectCache from an unordered set of bindings with
// distinct OIDs: it populates Values, then walks the sorted OIDs to install
// a SetNext chain anchored at the empty OID and terminated with SetEnd at
// the maximum OID, per spec.md §4.1.
func FromPairs(pairs []Pair) *ObjectCache {
	c := New()
	for _, p := range pairs {
		c.Set(p.OID, p.Value)
	}
	if len(pairs) == 0 {
		return c
	}
	sorted := make([]oid.OID, len(pairs))
	for i, p := range pairs {
		sorted[i] = p.OID
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	prev := oid.New() // empty OID anchors the lower end
	for _, o := range sorted {
		if !prev.Equal(o) {
			c.SetNext(prev, o)
		}
		prev = o
	}
	c.SetEnd(sorted[len(sorted)-1])
	return c
}
