package notify

import (
	"context"

	"github.com/gen2brain/beeep"
	pkgerrors "github.com/pkg/errors"
)

var _ Channel = DesktopChannel{}

// DesktopChannel shows a popup through the desktop notification service.
// First in the cascade: best immediacy when a session is active, useless
// when there is none.
type DesktopChannel struct{}

func (DesktopChannel) Name() string { return "desktop" }

func (DesktopChannel) Send(_ context.Context, msg Message) error {
	if err := beeep.Notify(msg.Title, msg.Body, ""); err != nil {
		return pkgerrors.Wrap(err, "failed to display desktop notification")
	}
	return nil
}
