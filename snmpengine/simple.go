package snmpengine

import (
	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/internal/problog"
	"github.com/nssct/snmpcheck/oid"
	"github.com/nssct/snmpcheck/snmpval"
)

// SimpleEngine turns every question into an immediate, direct call to the
// backend: Get and GetNext block the caller on the round trip and return an
// already-completed Future. Step never has work to do. This is the
// reference implementation every other Engine must remain observationally
// equivalent to (spec.md §8), and the simplest possible Engine to drive a
// plugin against in tests.
type SimpleEngine struct {
	backend Backend
	log     problog.Logger
}

// NewSimpleEngine returns a SimpleEngine backed by back. A nil log disables
// logging.
func NewSimpleEngine(back Backend, log problog.Logger) *SimpleEngine {
	if log == nil {
		log = problog.NoOp
	}
	return &SimpleEngine{backend: back, log: log}
}

// Get implements Engine.
func (e *SimpleEngine) Get(o oid.OID) *future.Future[snmpval.Value] {
	e.log.Debug("get", "oid", o)
	v, err := e.backend.Get(o)
	if err != nil {
		return future.Failed[snmpval.Value](err)
	}
	return valueFuture(v)
}

// GetNext implements Engine.
func (e *SimpleEngine) GetNext(o oid.OID) *future.Future[Binding] {
	e.log.Debug("getnext", "oid", o)
	no, v, err := e.backend.GetNext(o)
	if err != nil {
		return future.Failed[Binding](err)
	}
	return bindingFuture(no, v)
}

// Step implements Engine: SimpleEngine never defers work, so Step always
// reports nothing left to do.
func (e *SimpleEngine) Step() bool {
	return false
}
