// Package snmpval models SNMP-typed values, including the two sentinel
// values an agent can return in place of a concrete value: NoSuchObject and
// EndOfMibView. Sentinels are distinguishable by identity, per spec.md §3.
package snmpval

import (
	"fmt"
	"time"

	"github.com/nssct/snmpcheck/oid"
)

// Value is an opaque SNMP-typed value. The concrete kinds below and the two
// sentinels are the only values that implement it.
type Value interface {
	isValue()
	String() string
}

type sentinel string

func (sentinel) isValue()        {}
func (s sentinel) String() string { return string(s) }

// NoSuchObject is returned by an agent when the queried OID has no bound
// instance. It is a singleton distinguishable by pointer/value identity from
// any other sentinel of the same underlying type.
var NoSuchObject Value = sentinel("NoSuchObject")

// EndOfMibView is returned by an agent when there is no OID strictly
// greater than the one queried.
var EndOfMibView Value = sentinel("EndOfMibView")

// IsNoSuchObject reports whether v is the NoSuchObject sentinel.
func IsNoSuchObject(v Value) bool { return v == NoSuchObject }

// IsEndOfMibView reports whether v is the EndOfMibView sentinel.
func IsEndOfMibView(v Value) bool { return v == EndOfMibView }

// Integer is the SNMP INTEGER type.
type Integer int64

func (Integer) isValue()            {}
func (v Integer) String() string    { return fmt.Sprintf("%d", int64(v)) }

// OctetString is the SNMP OCTET STRING type, held as raw bytes.
type OctetString []byte

func (OctetString) isValue()         {}
func (v OctetString) String() string { return string(v) }

// Counter32 is a 32-bit monotonic counter, wrapping at 2^32.
type Counter32 uint32

func (Counter32) isValue()         {}
func (v Counter32) String() string { return fmt.Sprintf("%d", uint32(v)) }

// Counter64 is a 64-bit monotonic counter, wrapping at 2^64.
type Counter64 uint64

func (Counter64) isValue()         {}
func (v Counter64) String() string { return fmt.Sprintf("%d", uint64(v)) }

// Gauge32 is a 32-bit value that may increase or decrease, clamped at its
// bounds rather than wrapping.
type Gauge32 uint32

func (Gauge32) isValue()         {}
func (v Gauge32) String() string { return fmt.Sprintf("%d", uint32(v)) }

// TimeTicks is a duration measured in hundredths of a second since some
// epoch defined by the object (e.g. agent uptime).
type TimeTicks uint32

func (TimeTicks) isValue() {}
func (v TimeTicks) String() string {
	return fmt.Sprintf("%d (%s)", uint32(v), time.Duration(v)*10*time.Millisecond)
}

// IPAddress is a 4-byte SNMP IpAddress value.
type IPAddress [4]byte

func (IPAddress) isValue() {}
func (v IPAddress) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// ObjectIdentifier is an OID carried as an SNMP value (e.g. sysObjectID).
type ObjectIdentifier struct {
	OID oid.OID
}

func (ObjectIdentifier) isValue()         {}
func (v ObjectIdentifier) String() string { return v.OID.String() }
