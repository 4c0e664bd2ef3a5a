package problog

import "github.com/rs/zerolog"

// Zerolog adapts a zerolog.Logger to the Logger interface, for production
// use (cmd/snmpcheck wires one up from its -level flag; see
// nssct/log.py's logging.basicConfig(level=...) for the behavior this
// mirrors: one global verbosity knob). Output is zerolog's JSON lines.
type Zerolog struct {
	L zerolog.Logger
}

func (z Zerolog) Debug(msg string, kv ...any) {
	z.event(z.L.Debug(), kv).Msg(msg)
}

func (z Zerolog) Info(msg string, kv ...any) {
	z.event(z.L.Info(), kv).Msg(msg)
}

func (z Zerolog) Warn(msg string, kv ...any) {
	z.event(z.L.Warn(), kv).Msg(msg)
}

func (z Zerolog) Error(msg string, err error, kv ...any) {
	z.event(z.L.Error().Err(err), kv).Msg(msg)
}

// event applies alternating key/value pairs to e as .Interface(key, value)
// calls, tolerating an odd trailing key by ignoring it.
func (z Zerolog) event(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		e = e.Interface(key, kv[i+1])
	}
	return e
}
