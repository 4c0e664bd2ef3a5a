package report

import "fmt"

// Alert is a single state+message pair, the unit a Collector accumulates.
type Alert struct {
	State   State
	Message string
}

// NewAlert returns an Alert with the given state and formatted message.
func NewAlert(state State, format string, args ...any) Alert {
	return Alert{State: state, Message: fmt.Sprintf(format, args...)}
}

func (a Alert) String() string {
	return fmt.Sprintf("%s - %s", a.State, a.Message)
}
