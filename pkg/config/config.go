package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Config interface {
	HighLimit() int
	LowLimit() int
	RearmMargin() int
	PollInterval() time.Duration
	TelegramBotToken() string
	TelegramChatID() int64
	StateDir() string
	LogFile() string

	SetPollInterval(seconds int)

	// Load reads and validates the configuration from the source. On
	// failure the previously loaded values stay in effect.
	Load() error
	// Validate re-checks the currently loaded values.
	Validate() error

	LogrusFields() logrus.Fields
}
