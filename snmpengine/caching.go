package snmpengine

import (
	"errors"

	"github.com/nssct/snmpcheck/cache"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/internal/problog"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

// CachingEngine wraps another Engine with an ObjectCache: identical
// concurrent Get/GetNext requests are coalesced onto a single pending
// Future, and any request already answerable from the cache completes
// immediately without touching the wrapped engine at all (spec.md §4.4.2).
//
// If the wrapped engine supports cache coalescing (i.e. it is a
// *BulkEngine), CachingEngine registers itself as that engine's cache peer,
// so results the wrapped engine discovers incidentally (e.g. extra rows of
// a bulk walk) are folded into the same ObjectCache future Get/GetNext calls
// consult.
type CachingEngine struct {
	engine      Engine
	cache       *cache.ObjectCache
	pendingGet  map[oid.OID]*future.Future[snmpval.Value]
	pendingNext map[oid.OID]*future.Future[Binding]
	log         problog.Logger
}

// NewCachingEngine wraps engine with a fresh ObjectCache. A nil log
// disables logging.
func NewCachingEngine(engine Engine, log problog.Logger) *CachingEngine {
	if log == nil {
		log = problog.NoOp
	}
	c := &CachingEngine{
		engine:      engine,
		cache:       cache.New(),
		pendingGet:  make(map[oid.OID]*future.Future[snmpval.Value]),
		pendingNext: make(map[oid.OID]*future.Future[Binding]),
		log:         log,
	}
	if setter, ok := engine.(cacheSetter); ok {
		setter.setCache(c)
	}
	return c
}

// Get implements Engine.
func (c *CachingEngine) Get(o oid.OID) *future.Future[snmpval.Value] {
	if f, ok := c.pendingGet[o]; ok {
		c.log.Debug("get in pending cache", "oid", o)
		return f
	}
	v, err := c.cache.Get(o)
	if err == nil {
		c.log.Debug("get cached", "oid", o, "value", v)
		return valueFuture(v)
	}
	c.log.Debug("get not in cache", "oid", o)
	f := c.engine.Get(o)
	c.pendingGet[o] = f
	f.AddDoneCallback(func(f *future.Future[snmpval.Value]) {
		delete(c.pendingGet, o)
		v, err := f.Outcome()
		if err != nil {
			// NoSuchObject/EndOfMib are synthesized from nexts, never stored
			// directly, and any other failure leaves nothing cacheable.
			return
		}
		c.cache.Set(o, v)
	})
	return f
}

// GetNext implements Engine.
func (c *CachingEngine) GetNext(o oid.OID) *future.Future[Binding] {
	if f, ok := c.pendingNext[o]; ok {
		c.log.Debug("next in pending cache", "oid", o)
		return f
	}
	no, v, err := c.cache.GetNext(o)
	if err == nil {
		c.log.Debug("next cached", "oid", o, "noid", no, "value", v)
		return bindingFuture(no, v)
	}
	c.log.Debug("next not in cache", "oid", o)
	f := c.engine.GetNext(o)
	c.pendingNext[o] = f
	f.AddDoneCallback(func(f *future.Future[Binding]) {
		delete(c.pendingNext, o)
		b, err := f.Outcome()
		if err != nil {
			if errors.Is(err, ErrEndOfMib) {
				c.cache.SetEnd(o)
			}
			return
		}
		c.StoreNext(o, b.OID, b.Value)
	})
	return f
}

// StoreNext records the assertion that the successor of o is n (bound to
// v), or, when o == n, that o is the last OID in the MIB. It implements the
// cachePeer contract a wrapped BulkEngine uses to fold extra bulk-walk rows
// into this engine's cache.
func (c *CachingEngine) StoreNext(o, n oid.OID, v snmpval.Value) {
	if o.Equal(n) {
		c.cache.SetEnd(o)
		return
	}
	c.cache.SetNextValue(o, n, v)
}

// Step implements Engine by delegating to the wrapped engine.
func (c *CachingEngine) Step() bool {
	return c.engine.Step()
}
