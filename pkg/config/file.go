package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Recognized keys. Values from the env file override the process
// environment, which overrides the built-in defaults.
const (
	KeyHigh         = "HIGH"
	KeyLow          = "LOW"
	KeyRearmMargin  = "MARGIN"
	KeyPollInterval = "POLL_INTERVAL"
	KeyBotToken     = "TELEGRAM_BOT_TOKEN"
	KeyChatID       = "TELEGRAM_CHAT_ID"
	KeyStateDir     = "STATE_DIR"
	KeyLogFile      = "LOGFILE"
)

const (
	defaultHigh         = 80
	defaultLow          = 20
	defaultRearmMargin  = 2
	defaultPollInterval = 60
)

// DefaultEnvPath returns the per-user config file location,
// $XDG_CONFIG_HOME/battguard/.env by default.
func DefaultEnvPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "battguard", ".env")
}

func defaultStateDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "battguard")
}

func defaultLogFile() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "battguard.log")
}

var _ Config = &File{}

// File is a Config backed by a .env-style key/value file. A missing file is
// not an error; everything then comes from the environment and defaults.
type File struct {
	mu           *sync.RWMutex
	filepath     string
	values       map[string]string
	pollOverride int
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	if err := f.Load(); err != nil {
		return nil, err
	}

	return f, nil
}

// Load reads the environment and the file into a candidate set and commits
// it only when it validates. A candidate that fails validation is discarded
// and the previously committed values stay in effect, so a bad edit plus a
// reload signal cannot replace a good running config.
func (f *File) Load() error {
	values := map[string]string{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		values[k] = v
	}

	fileValues, err := godotenv.Read(f.filepath)
	if err != nil {
		if !os.IsNotExist(err) {
			return pkgerrors.Wrapf(err, "failed to parse config file %s", f.filepath)
		}
	} else {
		for k, v := range fileValues {
			values[k] = v
		}
	}

	if err := validateValues(values); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values

	return nil
}

// Validate re-checks the committed values. Load rejects invalid candidates
// before committing, so this only fails if the committed set was never
// loaded through Load.
func (f *File) Validate() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return validateValues(f.values)
}

// validateValues fails fast on values the evaluator cannot work with. An
// inverted band (LOW >= HIGH) would make the neutral band empty, so it is
// rejected here instead of silently degenerating.
func validateValues(values map[string]string) error {
	high, err := lookupInt(values, KeyHigh, defaultHigh)
	if err != nil {
		return err
	}
	low, err := lookupInt(values, KeyLow, defaultLow)
	if err != nil {
		return err
	}
	margin, err := lookupInt(values, KeyRearmMargin, defaultRearmMargin)
	if err != nil {
		return err
	}
	poll, err := lookupInt(values, KeyPollInterval, defaultPollInterval)
	if err != nil {
		return err
	}

	if high < 0 || high > 100 {
		return pkgerrors.Errorf("%s must be between 0 and 100, got %d", KeyHigh, high)
	}
	if low < 0 || low > 100 {
		return pkgerrors.Errorf("%s must be between 0 and 100, got %d", KeyLow, low)
	}
	if low >= high {
		return pkgerrors.Errorf("%s (%d) must be strictly less than %s (%d)", KeyLow, low, KeyHigh, high)
	}
	if margin < 0 {
		return pkgerrors.Errorf("%s must not be negative, got %d", KeyRearmMargin, margin)
	}
	if poll <= 0 {
		return pkgerrors.Errorf("%s must be a positive number of seconds, got %d", KeyPollInterval, poll)
	}

	if raw := lookupString(values, KeyChatID, ""); raw != "" {
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return pkgerrors.Wrapf(err, "invalid %s %q", KeyChatID, raw)
		}
	}

	return nil
}

func lookupString(values map[string]string, key, fallback string) string {
	if v, ok := values[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func lookupInt(values map[string]string, key string, fallback int) (int, error) {
	raw := lookupString(values, key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "invalid %s %q", key, raw)
	}
	return v, nil
}

func (f *File) stringValue(key, fallback string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lookupString(f.values, key, fallback)
}

func (f *File) intValue(key string, fallback int) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lookupInt(f.values, key, fallback)
}

// mustIntValue is for accessors called after Validate has passed.
func (f *File) mustIntValue(key string, fallback int) int {
	v, err := f.intValue(key, fallback)
	if err != nil {
		return fallback
	}
	return v
}

func (f *File) HighLimit() int {
	return f.mustIntValue(KeyHigh, defaultHigh)
}

func (f *File) LowLimit() int {
	return f.mustIntValue(KeyLow, defaultLow)
}

func (f *File) RearmMargin() int {
	return f.mustIntValue(KeyRearmMargin, defaultRearmMargin)
}

func (f *File) PollInterval() time.Duration {
	f.mu.RLock()
	override := f.pollOverride
	f.mu.RUnlock()

	if override > 0 {
		return time.Duration(override) * time.Second
	}
	return time.Duration(f.mustIntValue(KeyPollInterval, defaultPollInterval)) * time.Second
}

// SetPollInterval overrides POLL_INTERVAL for the lifetime of the process.
// It backs the --poll flag and survives config reloads.
func (f *File) SetPollInterval(seconds int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollOverride = seconds
}

func (f *File) TelegramBotToken() string {
	return f.stringValue(KeyBotToken, "")
}

func (f *File) TelegramChatID() int64 {
	raw := f.stringValue(KeyChatID, "")
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (f *File) StateDir() string {
	return f.stringValue(KeyStateDir, defaultStateDir())
}

func (f *File) LogFile() string {
	return f.stringValue(KeyLogFile, defaultLogFile())
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"high":         f.HighLimit(),
		"low":          f.LowLimit(),
		"margin":       f.RearmMargin(),
		"pollInterval": f.PollInterval().String(),
		"stateDir":     f.StateDir(),
		"logFile":      f.LogFile(),
		"telegram":     f.TelegramBotToken() != "" && f.TelegramChatID() != 0,
	}
}
