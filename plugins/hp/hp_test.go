package hp

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
		{OID: hpGlobalMemTotalBytes, Value: snmpval.Integer(2000)},
		{OID: hpGlobalMemAllocBytes, Value: snmpval.Integer(500)},
	}
	eng := snmpengine.NewSimpleEngine(mockbackend.New(bindings), nil)
	ctl := controller.New(eng, nil)
	coll := report.NewCollector()

	ctl.Run(coll, []controller.Plugin{MemUsagePlugin})

	require.Equal(t, report.OK, coll.State())
	assert.Contains(t, coll.String(), "mem=500B")
}
