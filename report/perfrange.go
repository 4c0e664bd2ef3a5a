package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PerfRange is an inclusive [Low, High] interval used to judge whether a
// measured value is acceptable, per the Nagios plugin developer guidelines
// (http://nagiosplug.sourceforge.net/developer-guidelines.html). A nil Low
// or High means "unbounded on that side". When Invert is true, the range
// describes the BAD values instead of the good ones.
type PerfRange struct {
	Low, High *decimal.Decimal
	Invert    bool
}

// NewPerfRange builds a PerfRange from optional bounds, mirroring
// nssct/report.py's PerfRange.__init__ (low defaults to 0 there; callers
// that want an unbounded low must pass nil explicitly).
func NewPerfRange(high, low *decimal.Decimal, invert bool) PerfRange {
	return PerfRange{High: high, Low: low, Invert: invert}
}

// ParsePerfRange parses the Nagios range syntax: an optional leading "@" to
// invert, then either "HIGH" (low implied 0), "LOW:HIGH", "~:HIGH" (low
// unbounded), or "LOW:" (high unbounded).
func ParsePerfRange(s string) (PerfRange, error) {
	invert := false
	if strings.HasPrefix(s, "@") {
		invert = true
		s = s[1:]
	}

	var lowStr, highStr string
	if i := strings.IndexByte(s, ':'); i >= 0 {
		lowStr, highStr = s[:i], s[i+1:]
	} else {
		lowStr, highStr = "0", s
	}

	var low, high *decimal.Decimal
	if lowStr != "~" {
		d, err := decimal.NewFromString(lowStr)
		if err != nil {
			return PerfRange{}, fmt.Errorf("report: invalid perf range %q: %w", s, err)
		}
		low = &d
	}
	if highStr != "" {
		d, err := decimal.NewFromString(highStr)
		if err != nil {
			return PerfRange{}, fmt.Errorf("report: invalid perf range %q: %w", s, err)
		}
		high = &d
	}
	return PerfRange{Low: low, High: high, Invert: invert}, nil
}

// zero is the implicit low bound of a bare "HIGH" or PerfRangeFromNumber
// range.
var zero = decimal.Zero

// PerfRangeFromNumber builds the common case of a range with low bound 0
// and the given high bound.
func PerfRangeFromNumber(high decimal.Decimal) PerfRange {
	low := zero
	return PerfRange{Low: &low, High: &high}
}

// Alert reports whether value lies outside this range (inverted if Invert
// is set).
func (r PerfRange) Alert(value decimal.Decimal) bool {
	outside := (r.Low != nil && value.LessThan(*r.Low)) || (r.High != nil && value.GreaterThan(*r.High))
	return outside != r.Invert
}

// String renders r in Nagios range syntax.
func (r PerfRange) String() string {
	var high string
	if r.High != nil {
		high = r.High.String()
	}
	ret := high
	switch {
	case r.Low == nil:
		if r.High == nil && !r.Invert {
			return ""
		}
		ret = "~:" + ret
	case !r.Low.IsZero():
		ret = r.Low.String() + ":" + ret
	}
	if r.Invert {
		ret = "@" + ret
	}
	return ret
}
