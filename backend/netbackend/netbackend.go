// Package netbackend implements snmpengine.Backend against a live agent over
// SNMPv2c, using github.com/gosnmp/gosnmp as the wire client. It is grounded
// on nssct/backend/network.py's NetworkBackend, translated from pysnmp's
// async cmdgen callbacks to gosnmp's synchronous Get/GetNext/GetBulk calls.
package netbackend

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/nssct/snmpcheck/internal/problog"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpengine"
	"github.com/nssct/snmpcheck/snmpval"
)

// Backend queries a single SNMPv2c agent. The zero value is not usable; build
// one with New.
type Backend struct {
	conn *gosnmp.GoSNMP
	log  problog.Logger
}

// Config names the agent and credentials a Backend talks to, mirroring the
// constructor arguments of nssct/backend/network.py's NetworkBackend.
type Config struct {
	// Agent is the agent's host or IP address.
	Agent string
	// Port is the agent's SNMP port. Zero defaults to 161.
	Port uint16
	// Community is the SNMPv2c community string.
	Community string
	// Timeout bounds a single request/retry round trip. Zero defaults to
	// 5 seconds.
	Timeout time.Duration
	// Retries is the number of retransmits gosnmp attempts per request
	// before giving up.
	Retries int
}

// New builds a Backend and connects it to cfg.Agent. The returned Backend
// owns the connection; callers should call Close when done with it.
func New(cfg Config, log problog.Logger) (*Backend, error) {
	if log == nil {
		log = problog.NoOp
	}
	port := cfg.Port
	if port == 0 {
		port = 161
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	conn := &gosnmp.GoSNMP{
		Target:    cfg.Agent,
		Port:      port,
		Community: cfg.Community,
		Version:   gosnmp.Version2c,
		Timeout:   timeout,
		Retries:   cfg.Retries,
		MaxOids:   gosnmp.MaxOids,
	}
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect to %s:%d: %w", snmpengine.ErrBackend, cfg.Agent, port, err)
	}
	return &Backend{conn: conn, log: log}, nil
}

// Close releases the underlying UDP socket.
func (b *Backend) Close() error {
	return b.conn.Conn.Close()
}

func backendErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", snmpengine.ErrBackend, fmt.Sprintf(format, args...))
}

// checkPacket surfaces an agent-reported PDU error the way
// nssct/backend/network.py's check_pysnmp_errors does, distinguishing a
// transport/protocol failure (err != nil) from an in-band errorStatus on an
// otherwise well-formed response.
func checkPacket(pkt *gosnmp.SnmpPacket, err error) (*gosnmp.SnmpPacket, error) {
	if err != nil {
		return nil, backendErrorf("%v", err)
	}
	if pkt.Error != gosnmp.NoError {
		return nil, backendErrorf("agent returned error %v at index %d", pkt.Error, pkt.ErrorIndex)
	}
	return pkt, nil
}

func parsePDUOID(name string) (oid.OID, error) {
	s := strings.TrimPrefix(name, ".")
	if s == "" {
		return oid.OID{}, backendErrorf("empty oid in response")
	}
	parts := strings.Split(s, ".")
	comps := make([]int, len(parts))
	for i, p := range parts {
		var n int
		if _, err := fmt.Sscanf(p, "%d", &n); err != nil {
			return oid.OID{}, backendErrorf("malformed oid %q in response", name)
		}
		comps[i] = n
	}
	return oid.FromInts(comps...), nil
}

// pduValue translates a gosnmp.SnmpPDU into a snmpval.Value, mapping the two
// sentinel PDU types to the package's sentinel values (spec.md §6.1).
// gosnmp.NoSuchInstance is folded into snmpval.NoSuchObject: both mean "no
// bound value here", and the engine/cache layers above only distinguish
// "no value" from "no more OIDs", not an agent's instance-vs-object
// distinction.
func pduValue(pdu gosnmp.SnmpPDU) (snmpval.Value, error) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance:
		return snmpval.NoSuchObject, nil
	case gosnmp.EndOfMibView:
		return snmpval.EndOfMibView, nil
	case gosnmp.Integer:
		return snmpval.Integer(gosnmp.ToBigInt(pdu.Value).Int64()), nil
	case gosnmp.OctetString:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return nil, backendErrorf("oid %s: OctetString value has unexpected type %T", pdu.Name, pdu.Value)
		}
		return snmpval.OctetString(b), nil
	case gosnmp.Counter32:
		return snmpval.Counter32(gosnmp.ToBigInt(pdu.Value).Uint64()), nil
	case gosnmp.Counter64:
		return snmpval.Counter64(gosnmp.ToBigInt(pdu.Value).Uint64()), nil
	case gosnmp.Gauge32:
		return snmpval.Gauge32(gosnmp.ToBigInt(pdu.Value).Uint64()), nil
	case gosnmp.TimeTicks:
		return snmpval.TimeTicks(gosnmp.ToBigInt(pdu.Value).Uint64()), nil
	case gosnmp.IPAddress:
		s, ok := pdu.Value.(string)
		if !ok {
			return nil, backendErrorf("oid %s: IPAddress value has unexpected type %T", pdu.Name, pdu.Value)
		}
		var a, c, d, e int
		if _, err := fmt.Sscanf(s, "%d.%d.%d.%d", &a, &c, &d, &e); err != nil {
			return nil, backendErrorf("oid %s: malformed IPAddress %q", pdu.Name, s)
		}
		return snmpval.IPAddress{byte(a), byte(c), byte(d), byte(e)}, nil
	case gosnmp.ObjectIdentifier:
		s, ok := pdu.Value.(string)
		if !ok {
			return nil, backendErrorf("oid %s: ObjectIdentifier value has unexpected type %T", pdu.Name, pdu.Value)
		}
		o, err := parsePDUOID(s)
		if err != nil {
			return nil, err
		}
		return snmpval.ObjectIdentifier{OID: o}, nil
	default:
		return nil, backendErrorf("oid %s: unsupported PDU type %v", pdu.Name, pdu.Type)
	}
}

// Get implements snmpengine.Backend.
func (b *Backend) Get(o oid.OID) (snmpval.Value, error) {
	b.log.Debug("net get", "oid", o)
	pkt, err := checkPacket(b.conn.Get([]string{o.String()}))
	if err != nil {
		return nil, err
	}
	if len(pkt.Variables) != 1 {
		return nil, backendErrorf("get %s: expected 1 variable binding, got %d", o, len(pkt.Variables))
	}
	retOID, err := parsePDUOID(pkt.Variables[0].Name)
	if err != nil {
		return nil, err
	}
	if !retOID.Equal(o) {
		return nil, backendErrorf("requested oid %s, but got oid %s", o, retOID)
	}
	return pduValue(pkt.Variables[0])
}

// GetNext implements snmpengine.Backend.
func (b *Backend) GetNext(o oid.OID) (oid.OID, snmpval.Value, error) {
	b.log.Debug("net getnext", "oid", o)
	pkt, err := checkPacket(b.conn.GetNext([]string{o.String()}))
	if err != nil {
		return oid.OID{}, nil, err
	}
	if len(pkt.Variables) != 1 {
		return oid.OID{}, nil, backendErrorf("getnext %s: expected 1 variable binding, got %d", o, len(pkt.Variables))
	}
	pdu := pkt.Variables[0]
	retOID, err := parsePDUOID(pdu.Name)
	if err != nil {
		return oid.OID{}, nil, err
	}
	v, err := pduValue(pdu)
	if err != nil {
		return oid.OID{}, nil, err
	}
	return retOID, v, nil
}

// GetBulk implements snmpengine.Backend. gosnmp.GetBulk is already a single
// round trip shaped exactly like the contract Backend.GetBulk documents
// (nonrep non-repeaters, then up to maxrep repetitions of the remaining
// columns), so unlike nssct/backend/network.py's getbulk there is no
// separate per-row re-assembly to do: gosnmp hands back the same flat,
// row-major list the agent returned.
func (b *Backend) GetBulk(oids []oid.OID, nonrep, maxrep int) ([]snmpengine.Binding, error) {
	if len(oids) == 0 {
		return nil, nil
	}
	strs := make([]string, len(oids))
	for i, o := range oids {
		strs[i] = o.String()
	}
	b.log.Debug("net getbulk", "oids", strs, "nonrep", nonrep, "maxrep", maxrep)
	pkt, err := checkPacket(b.conn.GetBulk(strs, uint8(nonrep), uint32(maxrep)))
	if err != nil {
		return nil, err
	}
	res := make([]snmpengine.Binding, 0, len(pkt.Variables))
	for _, pdu := range pkt.Variables {
		retOID, err := parsePDUOID(pdu.Name)
		if err != nil {
			return nil, err
		}
		v, err := pduValue(pdu)
		if err != nil {
			return nil, err
		}
		res = append(res, snmpengine.Binding{OID: retOID, Value: v})
	}
	return res, nil
}
