// Package snmpengine implements the query-coalescing engine family of
// spec.md §4.4: SimpleEngine (direct pass-through), CachingEngine (coalesces
// concurrent identical requests through an ObjectCache), and BulkEngine
// (fuses many pending point queries into GETBULK calls across Step calls).
// All three satisfy Engine and are interchangeable from a plugin's point of
// view (spec.md §8's equivalence requirement).
package snmpengine

import (
	"fmt"

	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

// Engine answers Get/GetNext questions through Futures: a returned Future
// may already be complete (SimpleEngine, cache hits) or may stay pending
// until a caller drives completion by repeatedly calling Step (BulkEngine).
// This is the cooperative scheduling seam described in spec.md §4.4 and §5 —
// backend round trips are synchronous calls made by Get, GetNext or Step on
// the caller's goroutine, and nothing here spawns a goroutine.
type Engine interface {
	// Get returns a Future for the value bound to o.
	Get(o oid.OID) *future.Future[snmpval.Value]

	// GetNext returns a Future for the next OID strictly greater than o and
	// its value.
	GetNext(o oid.OID) *future.Future[Binding]

	// Step performs one unit of work towards completing outstanding
	// Futures. It returns true if calling Step again could make further
	// progress (i.e. there is still pending work), matching
	// nssct/engine.py's AbstractEngine.step contract.
	Step() bool
}

// cacheSetter is implemented by engines that can be told to coalesce through
// an ObjectCache (only BulkEngine, mirroring nssct/engine.py's optional
// "setcache" hook used by CachingEngine's constructor).
type cacheSetter interface {
	setCache(c cachePeer)
}

// cachePeer is what a BulkEngine needs from the cache it feeds: a way to
// record a learned successor (or, with o == n, the end of the MIB).
// CachingEngine implements it with StoreNext over its own
// *cache.ObjectCache and passes itself in as the cachePeer.
type cachePeer interface {
	StoreNext(o, n oid.OID, v snmpval.Value)
}

// backendError wraps an unexpected backend failure or a response that
// violates the GetBulk contract.
func backendError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBackend, fmt.Sprintf(format, args...))
}

// valueFuture builds the Future a public Get returns, translating the
// NoSuchObject sentinel into a terminal failure so the success channel only
// ever carries concrete values (spec.md §4.4, §7).
func valueFuture(v snmpval.Value) *future.Future[snmpval.Value] {
	if snmpval.IsNoSuchObject(v) {
		return future.Failed[snmpval.Value](ErrNoSuchObject)
	}
	if snmpval.IsEndOfMibView(v) {
		return future.Failed[snmpval.Value](ErrEndOfMib)
	}
	return future.Completed(v)
}

// bindingFuture builds the Future a public GetNext returns, translating the
// EndOfMibView sentinel into a terminal ErrEndOfMib failure.
func bindingFuture(no oid.OID, v snmpval.Value) *future.Future[Binding] {
	if snmpval.IsEndOfMibView(v) {
		return future.Failed[Binding](ErrEndOfMib)
	}
	return future.Completed(Binding{OID: no, Value: v})
}
