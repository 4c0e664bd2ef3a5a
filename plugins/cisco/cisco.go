// Package cisco implements the Cisco-specific health checks: environmental
// fan and power supply status tables, and memory pool usage. Grounded on
// nssct/plugins/cisco.py.
package cisco

import (
	"github.com/shopspring/decimal"

	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/plugins"
	"github.com/nssct/snmpcheck/report"
)

var Cisco = oid.New(1, 3, 6, 1, 4, 1, 9)

var ciscoStates = map[int64]report.State{
	1: report.OK,       // normal
	2: report.WARNING,  // warning
	3: report.CRITICAL, // critical
	4: report.CRITICAL, // shutdown
	5: report.UNKNOWN,  // notPresent
	6: report.WARNING,  // notFunctioning
}

func ciscoState(n int64) report.State {
	if st, ok := ciscoStates[n]; ok {
		return st
	}
	return report.UNKNOWN
}

var (
	ciscoEnvMonFanStatusDescr = Cisco.Append(9, 13, 1, 4, 1, 2)
	ciscoEnvMonFanState       = Cisco.Append(9, 13, 1, 4, 1, 3)
)

// FanTablePlugin reports the status of every fan unit described by the
// environmental monitor MIB.
func FanTablePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, ciscoEnvMonFanStatusDescr)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		descr := row.Value.String()
		index := plugins.Tail(row.OID, ciscoEnvMonFanStatusDescr)
		stateV, err := future.AwaitOn(co, ctl.Engine().Get(ciscoEnvMonFanState.Append(index...)))
		if err != nil {
			return err
		}
		n, err := plugins.AsDecimal(stateV)
		if err != nil {
			return err
		}
		coll.AddAlert(report.NewAlert(ciscoState(n.IntPart()), "fan %s: %s", descr, stateNames[n.IntPart()]))
	}
	return nil
}

var (
	ciscoEnvMonSupplyStatusDescr = Cisco.Append(9, 13, 1, 5, 1, 2)
	ciscoEnvMonSupplyState       = Cisco.Append(9, 13, 1, 5, 1, 3)
)

// PSUTablePlugin reports the status of every power supply described by the
// environmental monitor MIB.
func PSUTablePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, ciscoEnvMonSupplyStatusDescr)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		descr := row.Value.String()
		index := plugins.Tail(row.OID, ciscoEnvMonSupplyStatusDescr)
		stateV, err := future.AwaitOn(co, ctl.Engine().Get(ciscoEnvMonSupplyState.Append(index...)))
		if err != nil {
			return err
		}
		n, err := plugins.AsDecimal(stateV)
		if err != nil {
			return err
		}
		coll.AddAlert(report.NewAlert(ciscoState(n.IntPart()), "psu %s: %s", descr, stateNames[n.IntPart()]))
	}
	return nil
}

var stateNames = map[int64]string{
	1: "normal",
	2: "warning",
	3: "critical",
	4: "shutdown",
	5: "not present",
	6: "not functioning",
}

var (
	ciscoMemoryPoolName = Cisco.Append(9, 48, 1, 1, 1, 2)
	ciscoMemoryPoolUsed = Cisco.Append(9, 48, 1, 1, 1, 5)
	ciscoMemoryPoolFree = Cisco.Append(9, 48, 1, 1, 1, 6)
)

// MemUsagePlugin reports the usage of every memory pool, scaled against the
// pool's total (used + free) capacity.
func MemUsagePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, ciscoMemoryPoolName)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		name := row.Value.String()
		index := plugins.Tail(row.OID, ciscoMemoryPoolName)

		usedFut := ctl.Engine().Get(ciscoMemoryPoolUsed.Append(index...))
		freeFut := ctl.Engine().Get(ciscoMemoryPoolFree.Append(index...))
		usedV, err := future.AwaitOn(co, usedFut)
		if err != nil {
			return err
		}
		used, err := plugins.AsDecimal(usedV)
		if err != nil {
			return err
		}
		freeV, err := future.AwaitOn(co, freeFut)
		if err != nil {
			return err
		}
		free, err := plugins.AsDecimal(freeV)
		if err != nil {
			return err
		}
		total := used.Add(free)
		measure := report.PerfMeasure{
			Label:  name,
			UOM:    "B",
			MinVal: plugins.DecPtr(decimal.Zero),
			MaxVal: plugins.DecPtr(total),
		}
		coll.AddMetric(measure.WithValue(used))
	}
	return nil
}

func init() {
	plugins.Register(
		ciscoEnvMonFanStatusDescr, ciscoEnvMonFanState,
		ciscoEnvMonSupplyStatusDescr, ciscoEnvMonSupplyState,
		ciscoMemoryPoolName, ciscoMemoryPoolUsed, ciscoMemoryPoolFree,
	)
}

// Detect starts every Cisco health check plugin.
func Detect(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	ctl.StartPlugin(coll, FanTablePlugin)
	ctl.StartPlugin(coll, PSUTablePlugin)
	ctl.StartPlugin(coll, MemUsagePlugin)
	return nil
}
