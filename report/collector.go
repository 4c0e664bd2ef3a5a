package report

import (
	"fmt"
	"strings"
)

// priorityOrder is the order Collector.State and Summary check for a
// non-empty alert bucket in: worst-first, with OK checked ahead of UNKNOWN
// so that "at least one explicit OK and nothing worse" beats "nothing ran
// but also nothing failed" (nssct/report.py's Collector.state).
var priorityOrder = [...]State{CRITICAL, WARNING, OK, UNKNOWN}

// Collector accumulates Alerts and PerfMetrics across every plugin a
// Controller runs, and renders the combined Nagios plugin output line.
type Collector struct {
	metrics []PerfMetric
	alerts  map[State][]Alert
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{alerts: make(map[State][]Alert)}
}

// AddAlert records alert under its own state bucket.
func (c *Collector) AddAlert(alert Alert) {
	if c.alerts == nil {
		c.alerts = make(map[State][]Alert)
	}
	c.alerts[alert.State] = append(c.alerts[alert.State], alert)
}

// AddMetric records metric and also files its own classification as an
// alert.
func (c *Collector) AddMetric(metric PerfMetric) {
	c.metrics = append(c.metrics, metric)
	c.AddAlert(metric.Alert())
}

// State returns the collector's overall state: the worst of CRITICAL,
// WARNING, OK that has at least one alert, or UNKNOWN if none do.
func (c *Collector) State() State {
	for _, st := range priorityOrder {
		if len(c.alerts[st]) > 0 {
			return st
		}
	}
	return UNKNOWN
}

// Summary returns the single Alert that should head the plugin output: the
// lone alert at the overall state, or a synthetic "N subchecks" Alert if
// more than one shares that state, or "no checks" if none were ever
// recorded.
func (c *Collector) Summary() Alert {
	st := c.State()
	bucket := c.alerts[st]
	if len(bucket) == 0 {
		return NewAlert(st, "no checks")
	}
	if len(bucket) > 1 {
		return NewAlert(st, "%d subchecks", len(bucket))
	}
	return bucket[0]
}

// String renders the full Nagios plugin output: the summary line, every
// other recorded alert on its own line, and a perfdata tail if any metrics
// were recorded.
func (c *Collector) String() string {
	main := c.Summary()
	lines := []string{main.String()}
	for _, st := range priorityOrder {
		for _, a := range c.alerts[st] {
			if a == main {
				continue
			}
			lines = append(lines, a.String())
		}
	}
	result := strings.Join(lines, "\n")
	if len(c.metrics) == 0 {
		return result
	}
	parts := make([]string, len(c.metrics))
	for i, m := range c.metrics {
		parts[i] = m.String()
	}
	return fmt.Sprintf("%s | %s", result, strings.Join(parts, " "))
}
