package notify

import (
	"context"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	name  string
	err   error
	calls int
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, _ Message) error {
	f.calls++
	return f.err
}

func TestCascadeAttemptsEveryChannelInOrder(t *testing.T) {
	first := &fakeChannel{name: "first", err: pkgerrors.New("no display")}
	second := &fakeChannel{name: "second"}
	third := &fakeChannel{name: "third", err: pkgerrors.New("network down")}
	c := NewCascade(first, second, third)

	report := c.Notify(context.Background(), Message{Title: "t", Body: "b", Kind: KindHigh})

	require.Len(t, report, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{report[0].Channel, report[1].Channel, report[2].Channel})
	assert.True(t, report[0].Failed())
	assert.False(t, report[1].Failed())
	assert.True(t, report[2].Failed())
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
}

// A fully failed cascade reports three failures but still terminates
// normally; the caller decides what to do with a missed alert.
func TestCascadeAllChannelsFail(t *testing.T) {
	c := NewCascade(
		&fakeChannel{name: "desktop", err: pkgerrors.New("no session")},
		&fakeChannel{name: "sound", err: pkgerrors.New("no audio device")},
		&fakeChannel{name: "telegram", err: pkgerrors.New("api error")},
	)

	report := c.Notify(context.Background(), Message{Kind: KindLow})

	require.Len(t, report, 3)
	assert.False(t, report.Delivered())
	assert.Equal(t, 3, report.Failures())
}

func TestCascadeNoRetryWithinInvocation(t *testing.T) {
	ch := &fakeChannel{name: "flaky", err: pkgerrors.New("boom")}
	c := NewCascade(ch)

	c.Notify(context.Background(), Message{Kind: KindHigh})

	assert.Equal(t, 1, ch.calls, "a failed channel must not be retried in the same cascade")
}

func TestCascadeChannels(t *testing.T) {
	c := NewCascade(&fakeChannel{name: "a"}, &fakeChannel{name: "b"})
	assert.Equal(t, []string{"a", "b"}, c.Channels())
}

func TestDeliveryReportDelivered(t *testing.T) {
	assert.False(t, DeliveryReport{}.Delivered())
	assert.True(t, DeliveryReport{{Channel: "x"}}.Delivered())
	assert.False(t, DeliveryReport{{Channel: "x", err: pkgerrors.New("e")}}.Delivered())
}
