package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// quote renders a perfdata label per the Nagios guidelines: alphanumeric
// (plus underscore) labels are used bare, anything else is single-quoted
// with embedded quotes doubled.
func quote(s string) string {
	plain := strings.ReplaceAll(s, "_", "")
	isAlnum := plain != ""
	for _, r := range plain {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			isAlnum = false
			break
		}
	}
	if isAlnum {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// PerfMeasure describes a perfdata series without a measured value: a
// label, unit of measurement, warning/critical thresholds, and optional
// declared min/max.
type PerfMeasure struct {
	Label          string
	UOM            string // "", "%", "s", "ms", "us", "B", "KB", "MB", "TB", "c"
	Warn, Crit     PerfRange
	MinVal, MaxVal *decimal.Decimal
}

// WithValue attaches a measured value to this measure, producing a
// PerfMetric.
func (m PerfMeasure) WithValue(value decimal.Decimal) PerfMetric {
	return PerfMetric{PerfMeasure: m, Value: value}
}

// PerfMetric is a PerfMeasure together with the value actually observed.
type PerfMetric struct {
	PerfMeasure
	Value decimal.Decimal
}

// State classifies Value against Crit first, then Warn.
func (m PerfMetric) State() State {
	switch {
	case m.Crit.Alert(m.Value):
		return CRITICAL
	case m.Warn.Alert(m.Value):
		return WARNING
	default:
		return OK
	}
}

// Alert renders this metric's classification as an Alert.
func (m PerfMetric) Alert() Alert {
	return NewAlert(m.State(), "%s=%s%s", m.Label, m.Value, m.UOM)
}

func (m PerfMetric) String() string {
	tailParts := []string{
		rangeOrEmpty(m.Warn),
		rangeOrEmpty(m.Crit),
		numOrEmpty(m.MinVal),
		numOrEmpty(m.MaxVal),
	}
	tail := strings.Join(tailParts, ";")
	s := fmt.Sprintf("%s=%s%s;%s", quote(m.Label), m.Value, m.UOM, tail)
	return strings.TrimRight(s, ";")
}

func rangeOrEmpty(r PerfRange) string {
	return r.String()
}

func numOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
