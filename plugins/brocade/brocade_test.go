package brocade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nssct/snmpcheck/backend/mockbackend"
	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/report"
	"github.com/nssct/snmpcheck/snmpengine"
	"github.com/nssct/snmpcheck/snmpval"
	"github.com/nssct/snmpcheck/walktext"
)

func TestMemUsagePlugin(t *testing.T) {
	bindings := []walktext.Binding{
		{OID: snAgGblDynMemTotal, Value: snmpval.Integer(1000)},
		{OID: snAgGblDynMemFree, Value: snmpval.Integer(400)},
	}
	eng := snmpengine.NewSimpleEngine(mockbackend.New(bindings), nil)
	ctl := controller.New(eng, nil)
	coll := report.NewCollector()

	ctl.Run(coll, []controller.Plugin{MemUsagePlugin})

	require.Equal(t, report.OK, coll.State())
	assert.Contains(t, coll.String(), "dynmem=600B")
}

func TestFanTablePlugin(t *testing.T) {
	bindings := []walktext.Binding{
		{OID: snChasFanOperStatus.Append(1), Value: snmpval.Integer(2)}, // 2 == operating normally
		{OID: snChasFanOperStatus.Append(2), Value: snmpval.Integer(3)}, // anything else is a fault
	}
	eng := snmpengine.NewSimpleEngine(mockbackend.New(bindings), nil)
	ctl := controller.New(eng, nil)
	coll := report.NewCollector()

	ctl.Run(coll, []controller.Plugin{FanTablePlugin})

	assert.Equal(t, report.CRITICAL, coll.State())
}
