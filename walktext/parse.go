// Package walktext parses the snmpwalk-text capture format described in
// spec.md §6.3: one binding per line, "<dotted-oid> = <TYPE>: <value>" or
// "<dotted-oid> = \"\"" for an empty octet string. It is grounded on
// nssct/backend/mock.py's parse_snmpwalk_line and the type_map it dispatches
// through.
package walktext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

// ParseError reports a line that failed to parse, identifying the offending
// text so a caller can report which line of a captured walk is malformed.
type ParseError struct {
	Line string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("walktext: %s: %q", e.Msg, e.Line)
}

var (
	lineRe      = regexp.MustCompile(`^([0-9.]+?)\s*=\s*(.*?)\s*$`)
	taggedRe    = regexp.MustCompile(`(?s)^(.*?):\s*(.*)$`)
	timeticksRe = regexp.MustCompile(`\((\d+)\)`)
	integerRe   = regexp.MustCompile(`\(?(\d+)\)?`)
)

// ParseOID parses a dotted OID of the form ".1.3.6.1.2.1.1.1.0" (a leading
// dot is optional and stripped).
func ParseOID(s string) (oid.OID, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return oid.New(), nil
	}
	parts := strings.Split(s, ".")
	comps := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return oid.OID{}, &ParseError{Line: s, Msg: "invalid oid component"}
		}
		comps[i] = n
	}
	return oid.FromInts(comps...), nil
}

func parseHexString(s string) (snmpval.Value, error) {
	s = strings.ReplaceAll(s, " ", "")
	b, err := hexDecode(s)
	if err != nil {
		return nil, &ParseError{Line: s, Msg: "invalid hex string"}
	}
	return snmpval.OctetString(b), nil
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err1 := hexDigit(s[i*2])
		lo, err2 := hexDigit(s[i*2+1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid hex digit")
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("not a hex digit")
	}
}

func parseTimeticks(s string) (snmpval.Value, error) {
	m := timeticksRe.FindStringSubmatch(s)
	if m == nil {
		return nil, &ParseError{Line: s, Msg: "invalid timeticks value"}
	}
	n, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return nil, &ParseError{Line: s, Msg: "invalid timeticks value"}
	}
	return snmpval.TimeTicks(n), nil
}

func parseInteger(s string) (snmpval.Value, error) {
	m := integerRe.FindStringSubmatch(s)
	if m == nil {
		return nil, &ParseError{Line: s, Msg: "invalid integer value"}
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: s, Msg: "invalid integer value"}
	}
	return snmpval.Integer(n), nil
}

func parseIPAddress(s string) (snmpval.Value, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return nil, &ParseError{Line: s, Msg: "invalid IpAddress value"}
	}
	var out snmpval.IPAddress
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return nil, &ParseError{Line: s, Msg: "invalid IpAddress value"}
		}
		out[i] = byte(n)
	}
	return out, nil
}

func parseOIDValue(s string) (snmpval.Value, error) {
	o, err := ParseOID(s)
	if err != nil {
		return nil, err
	}
	return snmpval.ObjectIdentifier{OID: o}, nil
}

// typeMap dispatches a "<TYPE>:" tag to its value parser, mirroring
// nssct/backend/mock.py's type_map exactly (the same eight tags, no more).
var typeMap = map[string]func(string) (snmpval.Value, error){
	"Counter32": func(s string) (snmpval.Value, error) {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, &ParseError{Line: s, Msg: "invalid Counter32 value"}
		}
		return snmpval.Counter32(n), nil
	},
	"Counter64": func(s string) (snmpval.Value, error) {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, &ParseError{Line: s, Msg: "invalid Counter64 value"}
		}
		return snmpval.Counter64(n), nil
	},
	"Gauge32": func(s string) (snmpval.Value, error) {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, &ParseError{Line: s, Msg: "invalid Gauge32 value"}
		}
		return snmpval.Gauge32(n), nil
	},
	"Hex-STRING": parseHexString,
	"INTEGER":    parseInteger,
	"IpAddress":  parseIPAddress,
	"OID":        parseOIDValue,
	"Timeticks":  parseTimeticks,
}

// Binding is a parsed (OID, Value) line.
type Binding struct {
	OID   oid.OID
	Value snmpval.Value
}

// ParseLine parses one snmpwalk-text line into a Binding.
func ParseLine(line string) (Binding, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Binding{}, &ParseError{Line: line, Msg: "non-assignment line"}
	}
	oidStr, valStr := m[1], m[2]
	o, err := ParseOID(oidStr)
	if err != nil {
		return Binding{}, err
	}

	if valStr == `""` {
		return Binding{OID: o, Value: snmpval.OctetString(nil)}, nil
	}
	if !strings.Contains(valStr, ":") {
		return Binding{}, &ParseError{Line: line, Msg: "unknown special value"}
	}
	tm := taggedRe.FindStringSubmatch(valStr)
	if tm == nil {
		return Binding{}, &ParseError{Line: line, Msg: "untagged value"}
	}
	kind, rest := tm[1], tm[2]
	conv, ok := typeMap[kind]
	if !ok {
		return Binding{}, &ParseError{Line: line, Msg: "unknown kind " + kind}
	}
	v, err := conv(rest)
	if err != nil {
		return Binding{}, err
	}
	return Binding{OID: o, Value: v}, nil
}

// Parse parses every non-empty line of text (as produced by an snmpwalk -Ox
// capture) into Bindings, stopping at the first malformed line.
func Parse(text string) ([]Binding, error) {
	var out []Binding
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
