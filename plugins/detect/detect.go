// Package detect inspects a device's sysObjectID and dispatches to the
// vendor-specific plugin package that knows how to monitor it. Grounded on
// nssct/plugins/detect.py.
package detect

import (
	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/plugins"
	"github.com/nssct/snmpcheck/plugins/brocade"
	"github.com/nssct/snmpcheck/plugins/cisco"
	"github.com/nssct/snmpcheck/plugins/hp"
	"github.com/nssct/snmpcheck/report"
	"github.com/nssct/snmpcheck/snmpval"
)

// alliedTelesis identifies devices that do not report health over SNMP at
// all; detecting one is itself a successful, uneventful check.
var alliedTelesis = oid.New(1, 3, 6, 1, 4, 1, 207)

// Plugin queries sysObjectID and starts the vendor-specific detection
// plugin matching the device, or records an informational alert if the
// vendor is unrecognized or known not to report health.
func Plugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	v, err := future.AwaitOn(co, ctl.Engine().Get(plugins.SysObjectID))
	if err != nil {
		return err
	}
	sysOID, ok := v.(snmpval.ObjectIdentifier)
	if !ok {
		coll.AddAlert(report.NewAlert(report.UNKNOWN, "sysObjectID %v is not an OID", v))
		return nil
	}

	switch {
	case sysOID.OID.HasPrefix(brocade.BrcdIP):
		return brocade.Detect(ctl, coll, co)
	case sysOID.OID.HasPrefix(cisco.Cisco):
		return cisco.Detect(ctl, coll, co)
	case sysOID.OID.HasPrefix(hp.HPMib):
		return hp.Detect(ctl, coll, co)
	case sysOID.OID.HasPrefix(alliedTelesis):
		coll.AddAlert(report.NewAlert(report.OK, "allied telesis device does not report health"))
		return nil
	default:
		coll.AddAlert(report.NewAlert(report.UNKNOWN, "unrecognized device, sysObjectID %s", sysOID))
		return nil
	}
}
