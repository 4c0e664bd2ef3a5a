package snmpengine

import (
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

// Backend is the synchronous, blocking transport an engine drives: a single
// GET/GETNEXT/GETBULK round trip to an agent, or a replay of a captured
// walk. Backend implementations do not see Futures or the cache; all of
// that lives in the engine layer above (spec.md §6.1).
//
// Get and GetNext return snmpval.NoSuchObject / snmpval.EndOfMibView as
// ordinary values, not errors: those sentinels are valid SNMP PDU contents.
// A non-nil error from either method means the round trip itself failed
// (transport, timeout, malformed PDU). The engines hand such an error to the
// waiting Future as it is; they do not wrap it in ErrBackend, so an error
// matches ErrBackend only if the backend wrapped it itself (netbackend does).
type Backend interface {
	// Get returns the value bound to o.
	Get(o oid.OID) (snmpval.Value, error)

	// GetNext returns the next OID strictly greater than o and its value.
	GetNext(o oid.OID) (oid.OID, snmpval.Value, error)

	// GetBulk performs a GETBULK-shaped query: the first nonrep OIDs are
	// resolved with a single getnext each, and the remaining len(oids)-nonrep
	// OIDs are walked maxrep rows deep. The result is a flat list of (oid,
	// value) pairs: nonrep single results followed by up to maxrep rows of
	// len(oids)-nonrep results each, in row-major order. A live agent may
	// return fewer bindings than that; DefaultGetBulk always returns every
	// row, repeating EndOfMibView once a column has run off the end of the
	// MIB. Implementations that have no native GETBULK should embed
	// DefaultGetBulk, which emulates it with repeated GetNext calls.
	GetBulk(oids []oid.OID, nonrep, maxrep int) ([]Binding, error)
}

// Binding is an (OID, Value) pair as returned by GetNext or GetBulk.
type Binding struct {
	OID   oid.OID
	Value snmpval.Value
}

// DefaultGetBulk emulates GetBulk purely in terms of GetNext, for backends
// with no native bulk operation (mirrors nssct/backend/__init__.py's
// BackendBase.getbulk). Embed it in a Backend implementation that only
// defines Get and GetNext, and promote GetBulk:
//
//	type myBackend struct {
//		snmpengine.DefaultGetBulk
//	}
//
// DefaultGetBulk.GetBulk calls back into the embedding type's GetNext via the
// Next field, which must be set to the embedding value.
type DefaultGetBulk struct {
	// Next is the GetNext implementation GetBulk emulates bulk walking
	// with. Embedders must set this to themselves (or another Backend) once
	// constructed.
	Next interface {
		GetNext(o oid.OID) (oid.OID, snmpval.Value, error)
	}
}

// GetBulk implements Backend.GetBulk by issuing nonrep GetNext calls
// followed by maxrep rounds of len(oids)-nonrep GetNext calls each.
func (d DefaultGetBulk) GetBulk(oids []oid.OID, nonrep, maxrep int) ([]Binding, error) {
	var res []Binding
	for _, o := range oids[:nonrep] {
		no, v, err := d.Next.GetNext(o)
		if err != nil {
			return nil, err
		}
		res = append(res, Binding{OID: no, Value: v})
	}
	rest := oids[nonrep:]
	for i := 0; i < maxrep; i++ {
		next := make([]oid.OID, 0, len(rest))
		for _, o := range rest {
			no, v, err := d.Next.GetNext(o)
			if err != nil {
				return nil, err
			}
			next = append(next, no)
			res = append(res, Binding{OID: no, Value: v})
		}
		rest = next
	}
	return res, nil
}
