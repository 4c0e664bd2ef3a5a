package snmpengine

import (
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/internal/problog"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

type pendingGetItem struct {
	o oid.OID
	f *future.Future[snmpval.Value]
}

type pendingNextItem struct {
	o oid.OID
	f *future.Future[Binding]
}

// BulkEngine collects Get/GetNext requests and, on each Step call, turns as
// many of them as possible into a single GETBULK round trip (spec.md
// §4.4.3). With lookahead > 0 and a cache peer wired in (via CachingEngine),
// extra rows of the bulk walk beyond what was actually requested are folded
// into the cache instead of discarded, prefetching the OIDs a plugin is
// likely to ask for next.
type BulkEngine struct {
	backend   Backend
	cachePeer cachePeer // nil unless wrapped by a CachingEngine

	pendingGet  []pendingGetItem
	pendingNext []pendingNextItem

	maxRep  int // 1 + lookahead
	bulkMax int // max OIDs per GETBULK request
	log     problog.Logger
}

// NewBulkEngine returns a BulkEngine backed by back. lookahead controls how
// many extra rows beyond the first a GETBULK request walks when a cache
// peer is present (0 disables lookahead); bulkMax caps the number of OIDs
// folded into a single GETBULK request (64 if <= 0). A nil log disables
// logging.
func NewBulkEngine(back Backend, lookahead, bulkMax int, log problog.Logger) *BulkEngine {
	if bulkMax <= 0 {
		bulkMax = 64
	}
	if log == nil {
		log = problog.NoOp
	}
	return &BulkEngine{backend: back, maxRep: 1 + lookahead, bulkMax: bulkMax, log: log}
}

func (e *BulkEngine) setCache(c cachePeer) {
	e.cachePeer = c
}

// Get implements Engine: the request is queued, not issued, until Step
// runs.
func (e *BulkEngine) Get(o oid.OID) *future.Future[snmpval.Value] {
	f := future.New[snmpval.Value]()
	e.pendingGet = append(e.pendingGet, pendingGetItem{o: o, f: f})
	return f
}

// GetNext implements Engine: the request is queued, not issued, until Step
// runs.
func (e *BulkEngine) GetNext(o oid.OID) *future.Future[Binding] {
	f := future.New[Binding]()
	e.pendingNext = append(e.pendingNext, pendingNextItem{o: o, f: f})
	return f
}

func (e *BulkEngine) hasPending() bool {
	return len(e.pendingGet) > 0 || len(e.pendingNext) > 0
}

// completeValue resolves a Get Future with a raw backend value, translating
// the NoSuchObject/EndOfMibView sentinels into failures of the matching kind
// (spec.md §4.4, §7).
func completeValue(f *future.Future[snmpval.Value], v snmpval.Value) {
	switch {
	case snmpval.IsNoSuchObject(v):
		f.SetFailure(ErrNoSuchObject)
	case snmpval.IsEndOfMibView(v):
		f.SetFailure(ErrEndOfMib)
	default:
		f.SetResult(v)
	}
}

// completeBinding resolves a GetNext Future with a raw (oid, value) pair,
// translating EndOfMibView into a failure.
func completeBinding(f *future.Future[Binding], no oid.OID, v snmpval.Value) {
	if snmpval.IsEndOfMibView(v) {
		f.SetFailure(ErrEndOfMib)
		return
	}
	f.SetResult(Binding{OID: no, Value: v})
}

// Step implements Engine. It fuses as much of the pending queue as fits in
// one GETBULK request (falling back to a single GET/GETNEXT call when that
// is all there is to do), demultiplexes the response back onto the
// originating Futures, and reports whether further Step calls could still
// make progress.
func (e *BulkEngine) Step() bool {
	maxRep := 1
	if e.cachePeer != nil {
		maxRep = e.maxRep
	}

	if len(e.pendingNext) == 0 {
		if len(e.pendingGet) == 0 {
			return false
		}
		if len(e.pendingGet) == 1 {
			pg := e.pendingGet[0]
			e.pendingGet = e.pendingGet[1:]
			e.log.Debug("single get query", "oid", pg.o)
			v, err := e.backend.Get(pg.o)
			if err != nil {
				pg.f.SetFailure(err)
			} else {
				completeValue(pg.f, v)
			}
			return e.hasPending()
		}
	}
	if maxRep <= 1 && len(e.pendingNext) == 1 && len(e.pendingGet) == 0 {
		pn := e.pendingNext[0]
		e.pendingNext = e.pendingNext[1:]
		e.log.Debug("single next query", "oid", pn.o)
		no, v, err := e.backend.GetNext(pn.o)
		if err != nil {
			pn.f.SetFailure(err)
		} else {
			completeBinding(pn.f, no, v)
		}
		return e.hasPending()
	}

	getBatch := e.pendingGet
	if len(getBatch) > e.bulkMax {
		getBatch = getBatch[:e.bulkMax]
	}
	reqOIDs := make([]oid.OID, 0, len(getBatch))
	for _, pg := range getBatch {
		reqOIDs = append(reqOIDs, pg.o.Prev())
	}
	nonRep := len(reqOIDs)

	nextBudget := e.bulkMax - nonRep
	if nextBudget < 0 {
		nextBudget = 0
	}
	nextBatch := e.pendingNext
	if len(nextBatch) > nextBudget {
		nextBatch = nextBatch[:nextBudget]
	}
	for _, pn := range nextBatch {
		reqOIDs = append(reqOIDs, pn.o)
	}

	e.log.Debug("bulk query", "oids", reqOIDs, "nonrep", nonRep, "maxrep", maxRep)
	result, err := e.backend.GetBulk(reqOIDs, nonRep, maxRep)
	if err != nil {
		for _, pg := range getBatch {
			pg.f.SetFailure(err)
		}
		for _, pn := range nextBatch {
			pn.f.SetFailure(err)
		}
		e.pendingGet = e.pendingGet[len(getBatch):]
		e.pendingNext = e.pendingNext[len(nextBatch):]
		return e.hasPending()
	}

	maxBindings := nonRep + maxRep*(len(reqOIDs)-nonRep)
	if len(result) > maxBindings {
		err := backendError("bulk query of %d oids (nonrep=%d, maxrep=%d) returned %d bindings, more than the %d theoretical max",
			len(reqOIDs), nonRep, maxRep, len(result), maxBindings)
		for _, pg := range getBatch {
			pg.f.SetFailure(err)
		}
		for _, pn := range nextBatch {
			pn.f.SetFailure(err)
		}
		e.pendingGet = e.pendingGet[len(getBatch):]
		e.pendingNext = e.pendingNext[len(nextBatch):]
		return e.hasPending()
	}

	var completions []func()

	// Phase 1: up to nonRep results answer queued Get requests. Each was
	// queried as prev(requested oid), so an exact match means the agent
	// has a value at the requested oid; a strictly greater result means
	// no such object exists there; a strictly lesser result means the
	// backend violated the GETBULK contract; EndOfMibView mid-row means
	// the MIB ended before reaching this column at all.
	for len(result) > 0 && len(e.pendingGet) > 0 {
		pg := e.pendingGet[0]
		e.pendingGet = e.pendingGet[1:]
		b := result[0]
		result = result[1:]

		reqOID, noid, value := pg.o, b.OID, b.Value
		fut := pg.f
		if snmpval.IsEndOfMibView(value) {
			completions = append(completions, func() { fut.SetFailure(ErrEndOfMib) })
			if e.cachePeer != nil {
				e.cachePeer.StoreNext(noid, noid, value) // forces setEnd(noid)
			}
			continue
		}
		switch {
		case noid.Less(reqOID):
			err := backendError("bulk get: queried %s, backend returned smaller %s", reqOID, noid)
			completions = append(completions, func() { fut.SetFailure(err) })
			continue
		case reqOID.Less(noid):
			completions = append(completions, func() { fut.SetFailure(ErrNoSuchObject) })
		default: // reqOID == noid: the object is bound
			v := value
			completions = append(completions, func() { fut.SetResult(v) })
		}
		if e.cachePeer != nil {
			e.cachePeer.StoreNext(reqOID.Prev(), noid, value)
		}
	}

	// Phase 2: the first row of the repeater columns answers queued
	// GetNext requests directly.
	var rowOIDs []oid.OID
	for len(result) > 0 && len(nextBatch) > 0 {
		nextBatch = nextBatch[1:]
		pn := e.pendingNext[0]
		e.pendingNext = e.pendingNext[1:]
		b := result[0]
		result = result[1:]
		fut, bind := pn.f, b
		if snmpval.IsEndOfMibView(bind.Value) {
			completions = append(completions, func() { fut.SetFailure(ErrEndOfMib) })
		} else {
			completions = append(completions, func() { fut.SetResult(bind) })
		}
		rowOIDs = append(rowOIDs, b.OID)
	}

	// Phase 3: remaining repeater rows (the lookahead) only ever feed the
	// cache; nothing was queued for them, so there is no Future to
	// complete.
	if e.cachePeer != nil {
		for len(result) > 0 && len(rowOIDs) > 0 {
			var next []oid.OID
			for len(result) > 0 && len(rowOIDs) > 0 {
				o := rowOIDs[0]
				rowOIDs = rowOIDs[1:]
				b := result[0]
				result = result[1:]
				if snmpval.IsEndOfMibView(b.Value) {
					e.cachePeer.StoreNext(b.OID, b.OID, b.Value) // forces setEnd(roid)
				} else {
					e.cachePeer.StoreNext(o, b.OID, b.Value)
				}
				next = append(next, b.OID)
			}
			rowOIDs = next
		}
	}

	for _, complete := range completions {
		complete()
	}
	return e.hasPending()
}
