package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Players tried in preference order, with sound files common desktop
// distributions ship.
var soundPlayers = [][]string{
	{"paplay", "/usr/share/sounds/freedesktop/stereo/complete.oga"},
	{"canberra-gtk-play", "-f", "/usr/share/sounds/freedesktop/stereo/complete.oga"},
	{"aplay", "/usr/share/sounds/alsa/Front_Center.wav"},
}

var _ Channel = &SoundChannel{}

// SoundChannel plays an audible cue with whatever player the host has and
// rings the terminal bell as a last resort. Works without an active
// foreground session, which is why it sits after the desktop popup.
type SoundChannel struct {
	bell io.Writer
}

func NewSoundChannel() *SoundChannel {
	return &SoundChannel{bell: os.Stdout}
}

func (s *SoundChannel) Name() string { return "sound" }

func (s *SoundChannel) Send(ctx context.Context, _ Message) error {
	for _, player := range soundPlayers {
		if _, err := exec.LookPath(player[0]); err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, player[0], player[1:]...)
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Run(); err != nil {
			logrus.Debugf("%s failed: %v", player[0], err)
			continue
		}
		return nil
	}

	if _, err := fmt.Fprint(s.bell, "\a"); err != nil {
		return pkgerrors.Wrap(err, "failed to ring terminal bell")
	}
	return nil
}
