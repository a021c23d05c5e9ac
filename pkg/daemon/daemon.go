package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/battguard/battguard/pkg/config"
	"github.com/battguard/battguard/pkg/monitor"
	"github.com/battguard/battguard/pkg/notify"
	"github.com/battguard/battguard/pkg/sensor"
	"github.com/battguard/battguard/pkg/state"
)

// DefaultSocketPath returns the control socket location, preferring the
// user's runtime directory.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "battguard.sock")
	}
	return filepath.Join(os.TempDir(), "battguard.sock")
}

// Options selects the daemon's run mode. The zero value runs the loop
// indefinitely.
type Options struct {
	ConfigPath string
	SocketPath string

	// Once runs a single poll-evaluate-notify cycle and exits.
	Once bool
	// ForceHigh / ForceLow drive the matching action through the cascade
	// without touching the real sensor or the persisted state.
	ForceHigh bool
	ForceLow  bool
	// PollOverride overrides POLL_INTERVAL (seconds) when positive.
	PollOverride int
}

// Run starts battguard in the mode selected by opts. Only startup errors
// (invalid config, unwritable state directory, dead socket path) are
// returned; steady-state errors are absorbed and logged by the loop.
func Run(opts Options) error {
	conf, err := config.NewFile(opts.ConfigPath)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to load config")
	}
	if opts.PollOverride > 0 {
		conf.SetPollInterval(opts.PollOverride)
	}

	teeLogOutput(conf.LogFile())
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	if err := os.MkdirAll(conf.StateDir(), 0o755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create state directory %s", conf.StateDir())
	}

	store := state.NewStore(conf.StateDir())
	guardian := NewGuardian(conf, sensor.NewReader(), buildCascade(conf), store)

	switch {
	case opts.ForceHigh, opts.ForceLow:
		return runForced(guardian, opts)
	case opts.Once:
		guardian.RunOnce(context.Background())
		return nil
	}

	return runLoop(conf, guardian, store, opts.SocketPath)
}

func runForced(g *Guardian, opts Options) error {
	action := monitor.ActionNotifyLow
	if opts.ForceHigh {
		action = monitor.ActionNotifyHigh
	}
	g.RunForced(context.Background(), action)
	return nil
}

func runLoop(conf config.Config, guardian *Guardian, store *state.Store, socketPath string) error {
	if err := store.WritePID(); err != nil {
		logrus.Warnf("failed to write pid file: %v", err)
	}
	defer store.RemovePID()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := conf.Load(); err != nil {
				logrus.Errorf("failed to reload config, keeping previous values in effect: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
		}
	}()

	srv, err := serveControlAPI(guardian, socketPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		guardian.Loop(ctx)
		close(done)
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal %q: shutting down", sig)

	cancel()
	// The cancel wakes the loop's sleep immediately; an in-flight cycle
	// still completes its persistence write before Loop returns.
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shutdown control server: %v", err)
	}
	_ = os.Remove(socketPath)

	logrus.Info("exiting")
	return nil
}

func serveControlAPI(guardian *Guardian, socketPath string) (*http.Server, error) {
	router := setupRoutes(guardian)
	srv := &http.Server{Handler: router}

	// A leftover socket from a previous run would fail the listen.
	_ = os.Remove(socketPath)
	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to listen on %s", socketPath)
	}

	go func() {
		logrus.Infof("control server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("control server failed: %v", err)
		}
	}()

	return srv, nil
}

func buildCascade(conf config.Config) *notify.Cascade {
	channels := []notify.Channel{
		notify.DesktopChannel{},
		notify.NewSoundChannel(),
	}

	if token, chatID := conf.TelegramBotToken(), conf.TelegramChatID(); token != "" && chatID != 0 {
		channels = append(channels, notify.NewTelegramChannel(token, chatID))
	} else {
		logrus.Debug("telegram credentials absent, channel disabled")
	}

	return notify.NewCascade(channels...)
}

// teeLogOutput mirrors log output to a rotating file in addition to
// stderr, so the unattended daemon stays diagnosable.
func teeLogOutput(path string) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logrus.Warnf("failed to create log directory: %v", err)
		return
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
	}))
}

func setupRoutes(guardian *Guardian) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", guardian.getStatus)
	router.GET("/config", guardian.getConfig)
	router.POST("/check", guardian.postCheck)
	router.GET("/version", getVersion)

	return router
}
