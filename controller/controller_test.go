package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nssct/snmpcheck/backend/mockbackend"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/report"
	"github.com/nssct/snmpcheck/snmpengine"
	"github.com/nssct/snmpcheck/snmpval"
	"github.com/nssct/snmpcheck/walktext"
)

func newEngine() snmpengine.Engine {
	bindings := []walktext.Binding{
		{OID: oid.New(1, 1), Value: snmpval.Integer(7)},
	}
	return snmpengine.NewSimpleEngine(mockbackend.New(bindings), nil)
}

func TestController_Run_pluginCompletesSuccessfully(t *testing.T) {
	eng := newEngine()
	ctl := New(eng, nil)
	coll := report.NewCollector()

	var got snmpval.Value
	plugin := func(ctl *Controller, coll *report.Collector, co *future.Coroutine) error {
		v, err := future.AwaitOn(co, ctl.Engine().Get(oid.New(1, 1)))
		if err != nil {
			return err
		}
		got = v
		coll.AddAlert(report.NewAlert(report.OK, "fine"))
		return nil
	}

	ctl.Run(coll, []Plugin{plugin})

	assert.Equal(t, snmpval.Integer(7), got)
	assert.Equal(t, report.OK, coll.State())
	assert.Empty(t, ctl.pending)
}

func TestController_Run_pluginFailureRecordedAsCritical(t *testing.T) {
	eng := newEngine()
	ctl := New(eng, nil)
	coll := report.NewCollector()

	boom := errors.New("boom")
	plugin := func(ctl *Controller, coll *report.Collector, co *future.Coroutine) error {
		return boom
	}

	ctl.Run(coll, []Plugin{plugin})

	assert.Equal(t, report.CRITICAL, coll.State())
	assert.Contains(t, coll.String(), "boom")
}

func TestController_Run_multiplePluginsAllRun(t *testing.T) {
	eng := newEngine()
	ctl := New(eng, nil)
	coll := report.NewCollector()

	var n int
	plugin := func(ctl *Controller, coll *report.Collector, co *future.Coroutine) error {
		n++
		return nil
	}

	ctl.Run(coll, []Plugin{plugin, plugin, plugin})
	assert.Equal(t, 3, n)
}

func TestController_Run_detectsStall(t *testing.T) {
	eng := newEngine()
	ctl := New(eng, nil)
	coll := report.NewCollector()

	never := future.New[int]()
	plugin := func(ctl *Controller, coll *report.Collector, co *future.Coroutine) error {
		_, err := future.AwaitOn(co, never)
		return err
	}

	ctl.Run(coll, []Plugin{plugin})

	assert.Equal(t, report.CRITICAL, coll.State())
	assert.Contains(t, coll.String(), "stalled")
}
