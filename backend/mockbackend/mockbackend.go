// Package mockbackend implements snmpengine.Backend by replaying a captured
// snmpwalk-text dump through an in-memory cache.ObjectCache, for offline
// tests and replay (spec.md §6.1, grounded on nssct/backend/mock.py's
// MockBackend).
package mockbackend

import (
	"github.com/nssct/snmpcheck/cache"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpengine"
	"github.com/nssct/snmpcheck/snmpval"
	"github.com/nssct/snmpcheck/walktext"
)

// Backend answers Get/GetNext/GetBulk entirely from a walk captured ahead
// of time.
type Backend struct {
	cache *cache.ObjectCache
	snmpengine.DefaultGetBulk
}

// New builds a Backend from already-parsed bindings (e.g. the output of
// walktext.Parse).
func New(bindings []walktext.Binding) *Backend {
	pairs := make([]cache.Pair, len(bindings))
	for i, b := range bindings {
		pairs[i] = cache.Pair{OID: b.OID, Value: b.Value}
	}
	b := &Backend{cache: cache.FromPairs(pairs)}
	b.DefaultGetBulk.Next = b
	return b
}

// FromText parses text as a captured snmpwalk and builds a Backend from it.
func FromText(text string) (*Backend, error) {
	bindings, err := walktext.Parse(text)
	if err != nil {
		return nil, err
	}
	return New(bindings), nil
}

// Get implements snmpengine.Backend.
func (b *Backend) Get(o oid.OID) (snmpval.Value, error) {
	v, err := b.cache.Get(o)
	if err != nil {
		// o lies outside every interval the captured walk proved: treat
		// it the same as a live agent that has nothing bound there.
		return snmpval.NoSuchObject, nil
	}
	return v, nil
}

// GetNext implements snmpengine.Backend.
func (b *Backend) GetNext(o oid.OID) (oid.OID, snmpval.Value, error) {
	no, v, err := b.cache.GetNext(o)
	if err != nil {
		// The capture never walked this far; without a live agent there is
		// nothing further to report.
		return o, snmpval.EndOfMibView, nil
	}
	return no, v, nil
}
