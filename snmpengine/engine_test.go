package snmpengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nssct/snmpcheck/backend/mockbackend"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpengine"
	"github.com/nssct/snmpcheck/snmpval"
	"github.com/nssct/snmpcheck/walktext"
)

func testBindings() []walktext.Binding {
	return []walktext.Binding{
		{OID: oid.New(1, 1), Value: snmpval.Integer(10)},
		{OID: oid.New(1, 3), Value: snmpval.Integer(30)},
		{OID: oid.New(1, 5), Value: snmpval.Integer(50)},
	}
}

// drive repeatedly steps eng until it reports no further work.
func drive(eng snmpengine.Engine) {
	for i := 0; i < 1000 && eng.Step(); i++ {
	}
}

// freshEngines returns one of each Engine family, all backed by identical
// data, for the spec's cross-engine observational equivalence requirement.
func freshEngines(t *testing.T) map[string]snmpengine.Engine {
	t.Helper()
	return map[string]snmpengine.Engine{
		"simple":         snmpengine.NewSimpleEngine(mockbackend.New(testBindings()), nil),
		"bulk":           snmpengine.NewBulkEngine(mockbackend.New(testBindings()), 0, 0, nil),
		"caching+simple": snmpengine.NewCachingEngine(snmpengine.NewSimpleEngine(mockbackend.New(testBindings()), nil), nil),
		"caching+bulk":   snmpengine.NewCachingEngine(snmpengine.NewBulkEngine(mockbackend.New(testBindings()), 2, 0, nil), nil),
	}
}

func TestEngines_Get_hit(t *testing.T) {
	for name, eng := range freshEngines(t) {
		t.Run(name, func(t *testing.T) {
			f := eng.Get(oid.New(1, 3))
			drive(eng)
			v, err := f.Outcome()
			require.NoError(t, err)
			assert.Equal(t, snmpval.Integer(30), v)
		})
	}
}

func TestEngines_Get_miss(t *testing.T) {
	for name, eng := range freshEngines(t) {
		t.Run(name, func(t *testing.T) {
			f := eng.Get(oid.New(1, 99))
			drive(eng)
			_, err := f.Outcome()
			assert.ErrorIs(t, err, snmpengine.ErrNoSuchObject)
		})
	}
}

func TestEngines_GetNext_walksForward(t *testing.T) {
	for name, eng := range freshEngines(t) {
		t.Run(name, func(t *testing.T) {
			f := eng.GetNext(oid.New(1, 1))
			drive(eng)
			b, err := f.Outcome()
			require.NoError(t, err)
			assert.True(t, b.OID.Equal(oid.New(1, 3)))
			assert.Equal(t, snmpval.Integer(30), b.Value)
		})
	}
}

func TestEngines_GetNext_pastEnd(t *testing.T) {
	for name, eng := range freshEngines(t) {
		t.Run(name, func(t *testing.T) {
			f := eng.GetNext(oid.New(1, 5))
			drive(eng)
			_, err := f.Outcome()
			assert.ErrorIs(t, err, snmpengine.ErrEndOfMib)
		})
	}
}

func TestEngines_Get_concurrentIdenticalRequestsCoalesce(t *testing.T) {
	back := mockbackend.New(testBindings())
	eng := snmpengine.NewCachingEngine(snmpengine.NewBulkEngine(back, 0, 0, nil), nil)

	f1 := eng.Get(oid.New(1, 3))
	f2 := eng.Get(oid.New(1, 3))
	assert.Same(t, f1, f2, "a second Get issued while the first is pending must share its Future")
	drive(eng)
	v1, err1 := f1.Outcome()
	v2, err2 := f2.Outcome()
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, v1, v2)
}

func TestBulkEngine_lookaheadPopulatesCachingPeer(t *testing.T) {
	back := mockbackend.New(testBindings())
	bulk := snmpengine.NewBulkEngine(back, 2, 0, nil)
	eng := snmpengine.NewCachingEngine(bulk, nil)

	f := eng.GetNext(oid.New(1, 1))
	drive(eng)
	_, err := f.Outcome()
	require.NoError(t, err)

	// The lookahead should have folded .1.5's binding into the cache
	// without any further Step: a second GetNext is answered purely from
	// the cache, and bulk has nothing outstanding to drive.
	f2 := eng.GetNext(oid.New(1, 3))
	assert.True(t, f2.Done(), "lookahead should have pre-populated this GetNext from the prior bulk round")
	b, err := f2.Outcome()
	require.NoError(t, err)
	assert.True(t, b.OID.Equal(oid.New(1, 5)))
}

// overLongBulkBackend always answers GetBulk with more bindings than its
// theoretical max (nonrep + maxrep*(len(oids)-nonrep)), simulating an agent
// that violates the GETBULK contract.
type overLongBulkBackend struct{}

func (overLongBulkBackend) Get(oid.OID) (snmpval.Value, error) { return snmpval.NoSuchObject, nil }

func (overLongBulkBackend) GetNext(o oid.OID) (oid.OID, snmpval.Value, error) {
	return o, snmpval.EndOfMibView, nil
}

func (overLongBulkBackend) GetBulk(oids []oid.OID, nonrep, maxrep int) ([]snmpengine.Binding, error) {
	want := nonrep + maxrep*(len(oids)-nonrep)
	extra := make([]snmpengine.Binding, want+1)
	for i := range extra {
		extra[i] = snmpengine.Binding{OID: oid.New(uint32(i) + 1), Value: snmpval.Integer(i)}
	}
	return extra, nil
}

func TestBulkEngine_overLongResponseIsBackendError(t *testing.T) {
	eng := snmpengine.NewBulkEngine(overLongBulkBackend{}, 0, 0, nil)
	f1 := eng.GetNext(oid.New(1, 1))
	f2 := eng.GetNext(oid.New(1, 2))
	drive(eng)

	_, err1 := f1.Outcome()
	_, err2 := f2.Outcome()
	assert.ErrorIs(t, err1, snmpengine.ErrBackend)
	assert.ErrorIs(t, err2, snmpengine.ErrBackend)
}
