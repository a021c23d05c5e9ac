package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Cascade attempts its channels sequentially in fixed priority order and
// never stops early: every channel gets its shot at the message and every
// outcome lands in the report. There is no retry within one invocation;
// the next threshold crossing is the natural retry point.
type Cascade struct {
	channels []Channel
}

func NewCascade(channels ...Channel) *Cascade {
	return &Cascade{channels: channels}
}

// Channels returns the configured channel names in priority order.
func (c *Cascade) Channels() []string {
	names := make([]string, 0, len(c.channels))
	for _, ch := range c.channels {
		names = append(names, ch.Name())
	}
	return names
}

func (c *Cascade) Notify(ctx context.Context, msg Message) DeliveryReport {
	report := make(DeliveryReport, 0, len(c.channels))

	for _, ch := range c.channels {
		err := ch.Send(ctx, msg)
		d := Delivery{Channel: ch.Name(), err: err}
		if err != nil {
			d.Error = err.Error()
			logrus.WithFields(logrus.Fields{
				"channel": ch.Name(),
				"kind":    msg.Kind,
			}).Warnf("delivery failed: %v", err)
		} else {
			logrus.WithFields(logrus.Fields{
				"channel": ch.Name(),
				"kind":    msg.Kind,
			}).Debug("delivered")
		}
		report = append(report, d)
	}

	if !report.Delivered() && len(report) > 0 {
		logrus.Warnf("all %d notification channels failed", len(report))
	}

	return report
}
