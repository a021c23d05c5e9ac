package notify

import "context"

// Kind tells a channel which threshold fired.
type Kind string

const (
	KindHigh Kind = "high"
	KindLow  Kind = "low"
)

// Message is one alert to push through the cascade.
type Message struct {
	Title string
	Body  string
	Kind  Kind
}

// Channel delivers a message over one transport. Implementations return an
// error instead of panicking when the host facility is missing (no display
// session, no audio device, no network), so a dead channel only costs its
// own delivery.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Delivery is the outcome of one channel attempt.
type Delivery struct {
	Channel string `json:"channel"`
	Error   string `json:"error,omitempty"`

	err error
}

func (d Delivery) Failed() bool {
	return d.err != nil
}

// DeliveryReport lists every attempted channel in cascade order.
type DeliveryReport []Delivery

// Delivered reports whether at least one channel succeeded.
func (r DeliveryReport) Delivered() bool {
	for _, d := range r {
		if !d.Failed() {
			return true
		}
	}
	return false
}

// Failures counts the channels that errored.
func (r DeliveryReport) Failures() int {
	n := 0
	for _, d := range r {
		if d.Failed() {
			n++
		}
	}
	return n
}
