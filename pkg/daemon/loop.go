package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battguard/battguard/pkg/config"
	"github.com/battguard/battguard/pkg/monitor"
	"github.com/battguard/battguard/pkg/notify"
	"github.com/battguard/battguard/pkg/sensor"
	"github.com/battguard/battguard/pkg/state"
)

// Guardian owns the poll loop and the notify-state handle. One instance,
// one logical thread of control: the loop is the only writer of the state,
// so the mutex exists only for the control API's read access.
type Guardian struct {
	conf    config.Config
	reader  sensor.Reader
	cascade *notify.Cascade
	store   *state.Store

	mu          sync.Mutex
	current     monitor.State
	lastReading *sensor.Reading
	lastReport  notify.DeliveryReport
}

// NewGuardian loads the persisted notify state and wires the components.
// An unreadable state file is logged and treated as first run.
func NewGuardian(conf config.Config, reader sensor.Reader, cascade *notify.Cascade, store *state.Store) *Guardian {
	current, err := store.Load()
	if err != nil {
		logrus.Warnf("failed to load persisted state, assuming neutral: %v", err)
		current = monitor.StateNeutral
	}
	logrus.WithFields(logrus.Fields{"state": current}).Info("notify state loaded")

	return &Guardian{
		conf:    conf,
		reader:  reader,
		cascade: cascade,
		store:   store,
		current: current,
	}
}

// Loop polls until ctx is canceled. The sleep between cycles is
// interruptible, so a termination signal never waits out a full poll
// interval; the in-flight cycle still finishes before Loop returns.
func (g *Guardian) Loop(ctx context.Context) {
	logrus.Infof("starting poll loop with interval %s", g.conf.PollInterval())

	for {
		g.RunOnce(ctx)

		timer := time.NewTimer(g.conf.PollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			logrus.Info("poll loop exiting")
			return
		case <-timer.C:
		}
	}
}

// RunOnce performs one poll-evaluate-notify-persist cycle. A sensor error
// skips the cycle without advancing the notify state; it never kills the
// loop. The new state persists only after the cascade attempt completes:
// persisting records that the crossing was handled, not that every channel
// succeeded.
func (g *Guardian) RunOnce(ctx context.Context) {
	reading, err := g.reader.Read()
	if err != nil {
		logrus.Errorf("failed to read battery: %v", err)
		return
	}

	g.mu.Lock()
	prev := g.current
	g.lastReading = &reading
	g.mu.Unlock()

	thresholds := g.thresholds()
	next, action := monitor.Evaluate(reading, thresholds, prev)

	logrus.WithFields(logrus.Fields{
		"percent": reading.Percent,
		"status":  reading.Status,
		"state":   next,
		"action":  action.String(),
	}).Debug("cycle evaluated")

	if action != monitor.ActionNone {
		report := g.cascade.Notify(ctx, buildMessage(action, reading.Percent, thresholds))
		g.mu.Lock()
		g.lastReport = report
		g.mu.Unlock()
		logrus.Infof("notified %s at %d%% (%d/%d channels delivered)",
			action, reading.Percent, len(report)-report.Failures(), len(report))
	}

	if next != prev {
		g.setState(next)
	}
}

// RunForced drives the cascade with a synthetic reading sitting exactly on
// the requested threshold. The persisted notify state is left untouched,
// so test invocations cannot corrupt the suppression tracking of a
// concurrently running daemon.
func (g *Guardian) RunForced(ctx context.Context, action monitor.Action) {
	thresholds := g.thresholds()

	var reading sensor.Reading
	switch action {
	case monitor.ActionNotifyHigh:
		reading = sensor.Reading{Percent: thresholds.High, Status: sensor.StatusCharging}
	case monitor.ActionNotifyLow:
		reading = sensor.Reading{Percent: thresholds.Low, Status: sensor.StatusDischarging}
	default:
		return
	}

	logrus.Infof("forced %s test: %d%% %s", action, reading.Percent, reading.Status)
	report := g.cascade.Notify(ctx, buildMessage(action, reading.Percent, thresholds))

	g.mu.Lock()
	g.lastReport = report
	g.mu.Unlock()
}

// setState updates the in-memory state and persists it. A persistence
// failure is logged and the daemon keeps running on the in-memory state; a
// restart after that may repeat or miss one alert.
func (g *Guardian) setState(st monitor.State) {
	g.mu.Lock()
	g.current = st
	g.mu.Unlock()

	if err := g.store.Save(st); err != nil {
		logrus.Errorf("failed to persist notify state: %v", err)
	}
}

func (g *Guardian) thresholds() monitor.Thresholds {
	return monitor.Thresholds{
		High:   g.conf.HighLimit(),
		Low:    g.conf.LowLimit(),
		Margin: g.conf.RearmMargin(),
	}
}

// State returns the current notify state.
func (g *Guardian) State() monitor.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func buildMessage(action monitor.Action, percent int, t monitor.Thresholds) notify.Message {
	switch action {
	case monitor.ActionNotifyLow:
		return notify.Message{
			Title: "Battery low",
			Body:  fmt.Sprintf("Battery at %d%%, plug in the charger (threshold: %d%%).", percent, t.Low),
			Kind:  notify.KindLow,
		}
	default:
		return notify.Message{
			Title: "Battery charged",
			Body:  fmt.Sprintf("Battery at %d%%, unplug the charger (target: %d%%).", percent, t.High),
			Kind:  notify.KindHigh,
		}
	}
}
