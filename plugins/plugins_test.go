package plugins

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nssct/snmpcheck/backend/mockbackend"
	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpengine"
	"github.com/nssct/snmpcheck/snmpval"
	"github.com/nssct/snmpcheck/walktext"
)

func TestAsDecimal(t *testing.T) {
	d, err := AsDecimal(snmpval.Integer(42))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(42).Equal(d))

	d, err = AsDecimal(snmpval.Counter32(200), "0.5")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(d))
}

func TestAsDecimal_nonNumericErrors(t *testing.T) {
	_, err := AsDecimal(snmpval.OctetString("hi"))
	assert.Error(t, err)
}

func TestAsDecimal_badFactorErrors(t *testing.T) {
	_, err := AsDecimal(snmpval.Integer(1), "notanumber")
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	base := oid.New(1, 3, 6, 1)
	full := base.Append(4, 5)
	assert.Equal(t, []uint32{4, 5}, Tail(full, base))
}

func TestTail_panicsWithoutPrefix(t *testing.T) {
	assert.Panics(t, func() {
		Tail(oid.New(9, 9), oid.New(1, 3))
	})
}

func TestDecPtr(t *testing.T) {
	d := decimal.NewFromInt(5)
	p := DecPtr(d)
	require.NotNil(t, p)
	assert.True(t, d.Equal(*p))
}

func TestRegister_AllOIDs(t *testing.T) {
	before := len(AllOIDs())
	mark := oid.New(9, 9, 9, 9, 9)
	Register(mark)
	after := AllOIDs()
	assert.Len(t, after, before+1)
	assert.True(t, after[len(after)-1].Equal(mark))
}

func TestAllOIDs_includesSysObjectID(t *testing.T) {
	found := false
	for _, o := range AllOIDs() {
		if o.Equal(SysObjectID) {
			found = true
		}
	}
	assert.True(t, found, "init() must register SysObjectID")
}

func TestSnmpwalk_iteratesTableRows(t *testing.T) {
	base := oid.New(1, 1)
	bindings := []walktext.Binding{
		{OID: base.Append(1), Value: snmpval.Integer(10)},
		{OID: base.Append(2), Value: snmpval.Integer(20)},
		{OID: oid.New(1, 2), Value: snmpval.Integer(99)}, // outside the table
	}
	back := mockbackend.New(bindings)
	eng := snmpengine.NewSimpleEngine(back, nil)
	ctl := controller.New(eng, nil)

	var rows []Row
	outer := future.RunCoroutine(func(co *future.Coroutine) error {
		next := Snmpwalk(ctl, co, base)
		for {
			row, ok, err := next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			rows = append(rows, row)
		}
		return nil
	})
	for i := 0; i < 1000 && !outer.Done(); i++ {
		eng.Step()
	}
	_, err := outer.Outcome()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, snmpval.Integer(10), rows[0].Value)
	assert.Equal(t, snmpval.Integer(20), rows[1].Value)
}

func TestSnmpwalk_stopsAtEndOfMib(t *testing.T) {
	base := oid.New(5)
	bindings := []walktext.Binding{
		{OID: base.Append(1), Value: snmpval.Integer(1)},
	}
	back := mockbackend.New(bindings)
	eng := snmpengine.NewSimpleEngine(back, nil)
	ctl := controller.New(eng, nil)

	var rowCount int
	outer := future.RunCoroutine(func(co *future.Coroutine) error {
		next := Snmpwalk(ctl, co, base)
		for {
			_, ok, err := next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			rowCount++
		}
		return nil
	})
	for i := 0; i < 1000 && !outer.Done(); i++ {
		eng.Step()
	}
	_, err := outer.Outcome()
	require.NoError(t, err)
	assert.Equal(t, 1, rowCount)
}
