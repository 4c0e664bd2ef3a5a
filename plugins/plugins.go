// Package plugins collects the helpers every vendor plugin package
// (plugins/brocade, plugins/cisco, plugins/hp, plugins/detect) builds on:
// the well-known sysObjectID scalar, a decimal-scaling helper for counter
// values, and a table-walk iterator. Grounded on nssct/plugins/__init__.py.
package plugins

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpengine"
	"github.com/nssct/snmpcheck/snmpval"
)

// SysObjectID names the scalar every SNMPv2 agent implements, identifying
// the vendor/model of the managed device (nssct/plugins/__init__.py's
// sysObjectID).
var SysObjectID = oid.New(1, 3, 6, 1, 2, 1, 1, 2, 0)

var (
	registryMu sync.Mutex
	registry   []oid.OID
)

// Register records oids as ones a plugin queries, for AllOIDs. Vendor
// plugin packages call this from their own init(), mirroring
// nssct/plugins/__init__.py's (and each vendor module's) module-level
// all_oids set, but built at package-init time behind a mutex instead of as
// a bare mutable global.
func Register(oids ...oid.OID) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, oids...)
}

// AllOIDs returns every OID registered by a plugin package so far, for
// cmd/walkfilter to decide which lines of a captured walk to keep.
func AllOIDs() []oid.OID {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]oid.OID, len(registry))
	copy(out, registry)
	return out
}

func init() {
	Register(SysObjectID)
}

// AsDecimal converts a numeric snmpval.Value (Integer, Counter32, Counter64,
// Gauge32, or TimeTicks) to a decimal.Decimal, optionally scaled by factor,
// preserving exact precision rather than rounding through float64
// (nssct/plugins/__init__.py's as_decimal). factor defaults to "1" when
// omitted.
func AsDecimal(v snmpval.Value, factor ...string) (decimal.Decimal, error) {
	scale := decimal.New(1, 0)
	if len(factor) > 0 {
		var err error
		scale, err = decimal.NewFromString(factor[0])
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("plugins: invalid factor %q: %w", factor[0], err)
		}
	}
	n, err := numericValue(v)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromInt(n).Mul(scale), nil
}

func numericValue(v snmpval.Value) (int64, error) {
	switch n := v.(type) {
	case snmpval.Integer:
		return int64(n), nil
	case snmpval.Counter32:
		return int64(n), nil
	case snmpval.Counter64:
		return int64(n), nil
	case snmpval.Gauge32:
		return int64(n), nil
	case snmpval.TimeTicks:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("plugins: %v is not a numeric value", v)
	}
}

// Row is one binding a table walk yields: the full OID under the walked
// table column, and its value.
type Row struct {
	OID   oid.OID
	Value snmpval.Value
}

// Snmpwalk returns an iterator stepping across every OID bound under base,
// in ascending order, by repeated GetNext calls (nssct/plugins/__init__.py's
// snmpwalk). Each call to the returned function suspends co until the next
// row's Future resolves. ok is false once the walk runs past the last OID
// under base or reaches the end of the MIB; the canonical consumption
// pattern is:
//
//	next := plugins.Snmpwalk(ctl, co, tableEntry)
//	for {
//		row, ok, err := next()
//		if err != nil {
//			return err
//		}
//		if !ok {
//			break
//		}
//		// use row.OID, row.Value
//	}
func Snmpwalk(ctl *controller.Controller, co *future.Coroutine, base oid.OID) func() (Row, bool, error) {
	cur := base
	return func() (Row, bool, error) {
		b, err := future.AwaitOn(co, ctl.Engine().GetNext(cur))
		if err != nil {
			if errors.Is(err, snmpengine.ErrEndOfMib) {
				return Row{}, false, nil
			}
			return Row{}, false, err
		}
		if !b.OID.HasPrefix(base) {
			return Row{}, false, nil
		}
		cur = b.OID
		return Row{OID: b.OID, Value: b.Value}, true, nil
	}
}

// DecPtr takes the address of a decimal.Decimal value, for populating the
// optional *decimal.Decimal fields of report.PerfMeasure from a literal.
func DecPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// Tail returns the components of o past the len(prefix) shared leading
// components, i.e. o's table-index suffix relative to prefix. Panics if o
// does not have prefix as a prefix.
func Tail(o, prefix oid.OID) []uint32 {
	if !o.HasPrefix(prefix) {
		panic("plugins: Tail: oid does not have the given prefix")
	}
	comps := o.Components()
	return comps[prefix.Len():]
}
