package walktext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

func TestParseOID(t *testing.T) {
	o, err := ParseOID(".1.3.6.1.2.1.1.1.0")
	require.NoError(t, err)
	assert.True(t, o.Equal(oid.New(1, 3, 6, 1, 2, 1, 1, 1, 0)))

	o, err = ParseOID("1.3.6") // leading dot is optional
	require.NoError(t, err)
	assert.True(t, o.Equal(oid.New(1, 3, 6)))

	_, err = ParseOID("1.x.6")
	assert.Error(t, err)
}

func TestParseLine(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		line string
		oid  oid.OID
		want snmpval.Value
	}{
		{name: "integer", line: `.1.3.6.1.2.1.1.7.0 = INTEGER: 72`, oid: oid.New(1, 3, 6, 1, 2, 1, 1, 7, 0), want: snmpval.Integer(72)},
		{name: "counter32", line: `.1.3.6.1.2.1.2.2.1.10.1 = Counter32: 123456`, oid: oid.New(1, 3, 6, 1, 2, 1, 2, 2, 1, 10, 1), want: snmpval.Counter32(123456)},
		{name: "counter64", line: `.1.3 = Counter64: 9999999999`, oid: oid.New(1, 3), want: snmpval.Counter64(9999999999)},
		{name: "gauge32", line: `.1.3 = Gauge32: 50`, oid: oid.New(1, 3), want: snmpval.Gauge32(50)},
		{name: "timeticks", line: `.1.3 = Timeticks: (12345) 0:02:03.45`, oid: oid.New(1, 3), want: snmpval.TimeTicks(12345)},
		{name: "ip address", line: `.1.3 = IpAddress: 10.0.0.1`, oid: oid.New(1, 3), want: snmpval.IPAddress{10, 0, 0, 1}},
		{name: "oid value", line: `.1.3 = OID: .1.3.6.1.4.1.9`, oid: oid.New(1, 3), want: snmpval.ObjectIdentifier{OID: oid.New(1, 3, 6, 1, 4, 1, 9)}},
		{name: "hex string", line: `.1.3 = Hex-STRING: 41 42 43`, oid: oid.New(1, 3), want: snmpval.OctetString("ABC")},
		{name: "empty octet string", line: `.1.3 = ""`, oid: oid.New(1, 3), want: snmpval.OctetString(nil)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseLine(tc.line)
			require.NoError(t, err)
			assert.True(t, b.OID.Equal(tc.oid))
			assert.Equal(t, tc.want, b.Value)
		})
	}
}

func TestParseLine_errors(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		line string
	}{
		{name: "no assignment", line: "not a valid line"},
		{name: "unknown kind", line: `.1.3 = Bogus: 1`},
		{name: "bad integer", line: `.1.3 = INTEGER: notanumber`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLine(tc.line)
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParse_multipleLinesSkipsBlank(t *testing.T) {
	text := ".1.3 = INTEGER: 1\n\n.1.4 = INTEGER: 2\n"
	bindings, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, snmpval.Integer(1), bindings[0].Value)
	assert.Equal(t, snmpval.Integer(2), bindings[1].Value)
}

func TestParse_stopsAtFirstMalformedLine(t *testing.T) {
	text := ".1.3 = INTEGER: 1\nnonsense\n.1.4 = INTEGER: 2\n"
	_, err := Parse(text)
	assert.Error(t, err)
}
