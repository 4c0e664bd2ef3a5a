package cisco

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

func TestMemUsagePlugin_walksPoolsAndReportsPerfdata(t *testing.T) {
	idx := ciscoMemoryPoolName.Append(1)
	bindings := []walktext.Binding{
		{OID: idx, Value: snmpval.OctetString("Processor")},
		{OID: ciscoMemoryPoolUsed.Append(1), Value: snmpval.Integer(300)},
		{OID: ciscoMemoryPoolFree.Append(1), Value: snmpval.Integer(700)},
	}
	eng := snmpengine.NewSimpleEngine(mockbackend.New(bindings), nil)
	ctl := controller.New(eng, nil)
	coll := report.NewCollector()

	ctl.Run(coll, []controller.Plugin{MemUsagePlugin})

	require.Equal(t, report.OK, coll.State())
	assert.Contains(t, coll.String(), "Processor=300B")
}

func TestFanTablePlugin(t *testing.T) {
	bindings := []walktext.Binding{
		{OID: ciscoEnvMonFanStatusDescr.Append(1), Value: snmpval.OctetString("fan 1")},
		{OID: ciscoEnvMonFanState.Append(1), Value: snmpval.Integer(1)}, // normal
	}
	eng := snmpengine.NewSimpleEngine(mockbackend.New(bindings), nil)
	ctl := controller.New(eng, nil)
	coll := report.NewCollector()

	ctl.Run(coll, []controller.Plugin{FanTablePlugin})

	assert.Equal(t, report.OK, coll.State())
}
