// Package brocade implements the Brocade/Foundry-specific health checks:
// chassis and per-unit temperature, fan and PSU status tables, CPU and
// dynamic-memory usage. Grounded on nssct/plugins/brocade.py.
package brocade

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/plugins"
	"github.com/nssct/snmpcheck/report"
	"github.com/nssct/snmpcheck/snmpval"
)

var BrcdIP = oid.New(1, 3, 6, 1, 4, 1, 1991)

var (
	snChasActualTemperature   = BrcdIP.Append(1, 1, 1, 1, 18, 0)
	snChasWarningTemperature  = BrcdIP.Append(1, 1, 1, 1, 19, 0)
	snChasShutdownTemperature = BrcdIP.Append(1, 1, 1, 1, 20, 0)
)

// brcdTemp scales a raw reading by 0.5°C per nssct/plugins/brocade.py's
// brcd_temp.
func brcdTemp(v snmpval.Value) (decimal.Decimal, error) {
	return plugins.AsDecimal(v, "0.5")
}

// TemperaturePlugin reports the chassis temperature against its warning
// threshold, and its shutdown threshold too if the current reading is
// already above warning.
func TemperaturePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	actFut := ctl.Engine().Get(snChasActualTemperature)
	warnFut := ctl.Engine().Get(snChasWarningTemperature)
	actV, err := future.AwaitOn(co, actFut)
	if err != nil {
		return err
	}
	act, err := brcdTemp(actV)
	if err != nil {
		return err
	}
	warnV, err := future.AwaitOn(co, warnFut)
	if err != nil {
		return err
	}
	warn, err := brcdTemp(warnV)
	if err != nil {
		return err
	}
	measure := report.PerfMeasure{Label: "chastemp", MinVal: plugins.DecPtr(decimal.New(-110, 0)), MaxVal: plugins.DecPtr(decimal.New(250, 0))}
	if act.LessThan(warn) {
		measure.Warn = report.PerfRangeFromNumber(warn)
		coll.AddMetric(measure.WithValue(act))
		return nil
	}
	critV, err := future.AwaitOn(co, ctl.Engine().Get(snChasShutdownTemperature))
	if err != nil {
		return err
	}
	crit, err := brcdTemp(critV)
	if err != nil {
		return err
	}
	measure.Warn = report.PerfRangeFromNumber(warn)
	measure.Crit = report.PerfRangeFromNumber(crit)
	coll.AddMetric(measure.WithValue(act))
	return nil
}

var (
	snChasUnitActualTemp          = BrcdIP.Append(1, 1, 1, 4, 1, 1, 4)
	snChasUnitWarningTem          = BrcdIP.Append(1, 1, 1, 4, 1, 1, 5)
	snChasUnitShutdownTemperature = BrcdIP.Append(1, 1, 1, 4, 1, 1, 6)
)

// UnitTemperaturePlugin is the multi-unit-chassis analogue of
// TemperaturePlugin, walking every unit's temperature row.
func UnitTemperaturePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, snChasUnitActualTemp)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		tail := plugins.Tail(row.OID, snChasUnitActualTemp)
		unit := tail[len(tail)-1]

		act, err := brcdTemp(row.Value)
		if err != nil {
			return err
		}
		warnV, err := future.AwaitOn(co, ctl.Engine().Get(snChasUnitWarningTem.Append(unit)))
		if err != nil {
			return err
		}
		warn, err := brcdTemp(warnV)
		if err != nil {
			return err
		}
		label := fmt.Sprintf("chasunit%dtemp", unit)
		measure := report.PerfMeasure{Label: label, MinVal: plugins.DecPtr(decimal.New(-110, 0)), MaxVal: plugins.DecPtr(decimal.New(250, 0))}
		if act.LessThan(warn) {
			measure.Warn = report.PerfRangeFromNumber(warn)
			coll.AddMetric(measure.WithValue(act))
			continue
		}
		critV, err := future.AwaitOn(co, ctl.Engine().Get(snChasUnitShutdownTemperature.Append(unit)))
		if err != nil {
			return err
		}
		crit, err := brcdTemp(critV)
		if err != nil {
			return err
		}
		measure.Warn = report.PerfRangeFromNumber(warn)
		measure.Crit = report.PerfRangeFromNumber(crit)
		coll.AddMetric(measure.WithValue(act))
	}
	return nil
}

var snAgentTempValue = BrcdIP.Append(1, 1, 2, 13, 1, 1, 4)

// AgentTemperaturePlugin reports every agent-level temperature sensor.
func AgentTemperaturePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, snAgentTempValue)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		act, err := brcdTemp(row.Value)
		if err != nil {
			return err
		}
		tail := plugins.Tail(row.OID, snAgentTempValue)
		parts := make([]string, len(tail))
		for i, c := range tail {
			parts[i] = fmt.Sprintf("%d", c)
		}
		label := fmt.Sprintf("agent_%s_temp", strings.Join(parts, "_"))
		measure := report.PerfMeasure{Label: label, MinVal: plugins.DecPtr(decimal.New(-110, 0)), MaxVal: plugins.DecPtr(decimal.New(250, 0))}
		coll.AddMetric(measure.WithValue(act))
	}
	return nil
}

var snChasFanOperStatus = BrcdIP.Append(1, 1, 1, 3, 1, 1, 3)

// FanTablePlugin reports every chassis fan's operational status.
func FanTablePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, snChasFanOperStatus)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		n, err := plugins.AsDecimal(row.Value)
		if err != nil {
			return err
		}
		tail := plugins.Tail(row.OID, snChasFanOperStatus)
		fan := tail[len(tail)-1]
		if n.Equal(decimal.New(2, 0)) {
			coll.AddAlert(report.NewAlert(report.OK, "fan %d is ok", fan))
		} else {
			coll.AddAlert(report.NewAlert(report.CRITICAL, "fan %d is critical with status %s", fan, n))
		}
	}
	return nil
}

var (
	snChasPwrSupplyDescription = BrcdIP.Append(1, 1, 1, 2, 1, 1, 2)
	snChasPwrSupplyOperStatus  = BrcdIP.Append(1, 1, 1, 2, 1, 1, 3)
)

// PSUTablePlugin reports every chassis power supply's operational status.
func PSUTablePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, snChasPwrSupplyOperStatus)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		n, err := plugins.AsDecimal(row.Value)
		if err != nil {
			return err
		}
		tail := plugins.Tail(row.OID, snChasPwrSupplyOperStatus)
		index := tail[len(tail)-1]

		var alert report.Alert
		switch {
		case n.Equal(decimal.New(2, 0)): // normal
			alert = report.NewAlert(report.OK, "psu %d is ok", index)
		case n.Equal(decimal.New(3, 0)): // failure
			descV, err := future.AwaitOn(co, ctl.Engine().Get(snChasPwrSupplyDescription.Append(index)))
			if err != nil {
				return err
			}
			msg := descV.String()
			if strings.HasSuffix(strings.TrimRight(msg, " \t"), " not present") {
				alert = report.NewAlert(report.OK, "psu %d is not present", index)
			} else {
				alert = report.NewAlert(report.CRITICAL, "psu %d has failed", index)
			}
		default:
			alert = report.NewAlert(report.CRITICAL, "psu %d has unexpected status %s", index, n)
		}
		coll.AddAlert(alert)
	}
	return nil
}

var snAgentCpuUtilValue = BrcdIP.Append(1, 1, 2, 11, 1, 1, 4)

// CPUUsagePlugin reports 5-minute average CPU utilization for every
// slot/CPU pair.
func CPUUsagePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	next := plugins.Snmpwalk(ctl, co, snAgentCpuUtilValue)
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		tail := plugins.Tail(row.OID, snAgentCpuUtilValue)
		if tail[len(tail)-1] != 300 { // select the 5-minute interval row
			continue
		}
		slot := tail[len(tail)-3]
		cpu := tail[len(tail)-2]
		value, err := plugins.AsDecimal(row.Value, "0.01")
		if err != nil {
			return err
		}
		measure := report.PerfMeasure{Label: fmt.Sprintf("cpu_%d_%d", slot, cpu), UOM: "%"}
		coll.AddMetric(measure.WithValue(value))
	}
	return nil
}

var (
	snAgGblDynMemTotal = BrcdIP.Append(1, 1, 2, 1, 54, 0)
	snAgGblDynMemFree  = BrcdIP.Append(1, 1, 2, 1, 55, 0)
)

// MemUsagePlugin reports dynamic memory in use (total minus free).
func MemUsagePlugin(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	totalFut := ctl.Engine().Get(snAgGblDynMemTotal)
	freeFut := ctl.Engine().Get(snAgGblDynMemFree)
	totalV, err := future.AwaitOn(co, totalFut)
	if err != nil {
		return err
	}
	total, err := plugins.AsDecimal(totalV)
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
	measure := report.PerfMeasure{Label: "dynmem", UOM: "B", MinVal: plugins.DecPtr(decimal.Zero), MaxVal: plugins.DecPtr(total)}
	coll.AddMetric(measure.WithValue(total.Sub(free)))
	return nil
}

var snBigIronRXFamily = oid.New(1, 3, 40)

func init() {
	plugins.Register(
		snChasActualTemperature, snChasWarningTemperature, snChasShutdownTemperature,
		snChasUnitActualTemp, snChasUnitWarningTem, snChasUnitShutdownTemperature,
		snAgentTempValue,
		snChasFanOperStatus,
		snChasPwrSupplyDescription, snChasPwrSupplyOperStatus,
		snAgentCpuUtilValue,
		snAgGblDynMemTotal, snAgGblDynMemFree,
	)
}

// Detect starts every Brocade health check plugin appropriate for the
// detected device, skipping the chassis temperature check on the BigIron RX
// family (which reports temperature differently).
func Detect(ctl *controller.Controller, coll *report.Collector, co *future.Coroutine) error {
	ctl.StartPlugin(coll, UnitTemperaturePlugin)
	ctl.StartPlugin(coll, AgentTemperaturePlugin)
	ctl.StartPlugin(coll, FanTablePlugin)
	ctl.StartPlugin(coll, PSUTablePlugin)
	ctl.StartPlugin(coll, CPUUsagePlugin)
	ctl.StartPlugin(coll, MemUsagePlugin)
	oidV, err := future.AwaitOn(co, ctl.Engine().Get(plugins.SysObjectID))
	if err != nil {
		return err
	}
	sysOID, ok := oidV.(snmpval.ObjectIdentifier)
	if ok && !sysOID.OID.HasPrefix(snBigIronRXFamily) {
		ctl.StartPlugin(coll, TemperaturePlugin)
	}
	return nil
}
