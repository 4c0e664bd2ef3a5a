// Package hp implements the HP/Aruba ICF-sensor and global-memory health
// checks. Grounded on nssct/plugins/hp.py.
//
// hp.py's hp_sensors_plugin and hp_mem_usage_plugin consume snmpwalk with
// "for oid, value in (yield plugins.snmpwalk(...))", which does not match
// snmpwalk's actual per-row suspend-and-resume shape (and references a
// engine.EndOfMibError exception that nssct/engine.py never defines). The
// rest of the codebase (cisco.py, brocade.py) consumes it with the
// documented suspend-per-row while loop instead, and this package follows
// that canonical form.
package hp

import (
	"github.com/shopspring/decimal"

	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/plugins"
	"github.com/nssct/snmpcheck/report"
)

var HPMib = oid.New(1, 3, 6, 1, 4, 1, 11)

var icfSensors = HPMib.Append(2, 14, 11, 1, 2, 6, 1)

var icfSensorType = map[int64]string{
	1: "other",
	2: "unknown",
	3: "temperature",
	4: "fan",
	5: "power supply",
	6: "power supply fan",
}

var hpStates = map[int64]struct {
	state report.State
	name  string
}{
	1: {report.UNKNOWN, "unknown"},
	2: {report.OK, "good"},
	3: {report.CRITICAL, "failed"},
}

func hpState(n int64) (report.State, string) {
	if s, ok := hpStates[n]; ok {
		return s.state, s.name
	}
	return report.UNKNOWN, "unrecognized"
}

var (
	icfSensorType_  = icfSensors.Append(2)
	icfSensorStatus = icfSensors.Append(7)
	icfSensorDescr  = icfSensors.Append(9)
)

// SensorsPlugin walks the ICF sensor table, reporting the status of every
// temperature, fan, and power supply sensor.
func SensorsPlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, icfSensorStatus)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		index := plugins.Tail(row.OID, icfSensorStatus)

		n, err := plugins.AsDecimal(row.Value)
		if err != nil {
			return err
		}
		typeV, err := future.AwaitOn(co, ctl.Engine().Get(icfSensorType_.Append(index...)))
		if err != nil {
			return err
		}
		typeNum, err := plugins.AsDecimal(typeV)
		if err != nil {
			return err
		}
		descrV, err := future.AwaitOn(co, ctl.Engine().Get(icfSensorDescr.Append(index...)))
		if err != nil {
			return err
		}
		descr := descrV.String()

		kind := icfSensorType[typeNum.IntPart()]
		if kind == "" {
			kind = "sensor"
		}
		state, name := hpState(n.IntPart())
		if descr != "" {
			coll.AddAlert(report.NewAlert(state, "%s %s: %s", kind, descr, name))
		} else {
			coll.AddAlert(report.NewAlert(state, "%s: %s", kind, name))
		}
	}
	return nil
}

var (
	hpGlobalMemTotalBytes = HPMib.Append(2, 14, 11, 5, 1, 1, 1, 1, 0)
	hpGlobalMemAllocBytes = HPMib.Append(2, 14, 11, 5, 1, 1, 1, 2, 0)
)

// MemUsagePlugin reports global memory allocation against the device's
// total memory.
func MemUsagePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	totalFut := ctl.Engine().Get(hpGlobalMemTotalBytes)
	allocFut := ctl.Engine().Get(hpGlobalMemAllocBytes)
	totalV, err := future.AwaitOn(co, totalFut)
	if err != nil {
		return err
	}
	total, err := plugins.AsDecimal(totalV)
	if err != nil {
		return err
	}
	allocV, err := future.AwaitOn(co, allocFut)
	if err != nil {
		return err
	}
	alloc, err := plugins.AsDecimal(allocV)
	if err != nil {
		return err
	}
	measure := report.PerfMeasure{
		Label:  "mem",
		UOM:    "B",
		MinVal: plugins.DecPtr(decimal.Zero),
		MaxVal: plugins.DecPtr(total),
	}
	coll.AddMetric(measure.WithValue(alloc))
	return nil
}

func init() {
	plugins.Register(icfSensors, icfSensorType_, icfSensorStatus, icfSensorDescr)
	plugins.Register(hpGlobalMemTotalBytes, hpGlobalMemAllocBytes)
}

// Detect starts every HP health check plugin.
func Detect(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	ctl.StartPlugin(coll, SensorsPlugin)
	ctl.StartPlugin(coll, MemUsagePlugin)
	return nil
}
