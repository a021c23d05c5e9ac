package daemon

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/battguard/battguard/pkg/monitor"
	"github.com/battguard/battguard/pkg/notify"
	"github.com/battguard/battguard/pkg/sensor"
	"github.com/battguard/battguard/pkg/version"
)

// Status is the control API's snapshot of the daemon, also consumed by the
// CLI client.
type Status struct {
	Reading     *sensor.Reading       `json:"reading,omitempty"`
	NotifyState monitor.State         `json:"notifyState"`
	Channels    []string              `json:"channels"`
	LastReport  notify.DeliveryReport `json:"lastReport,omitempty"`
}

// ConfigView is the control API's read-only view of the effective config.
type ConfigView struct {
	High         int    `json:"high"`
	Low          int    `json:"low"`
	Margin       int    `json:"margin"`
	PollInterval string `json:"pollInterval"`
	StateDir     string `json:"stateDir"`
	LogFile      string `json:"logFile"`
	Telegram     bool   `json:"telegram"`
}

func (g *Guardian) getStatus(c *gin.Context) {
	g.mu.Lock()
	reading := g.lastReading
	report := g.lastReport
	current := g.current
	g.mu.Unlock()

	c.IndentedJSON(http.StatusOK, Status{
		Reading:     reading,
		NotifyState: current,
		Channels:    g.cascade.Channels(),
		LastReport:  report,
	})
}

func (g *Guardian) getConfig(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, ConfigView{
		High:         g.conf.HighLimit(),
		Low:          g.conf.LowLimit(),
		Margin:       g.conf.RearmMargin(),
		PollInterval: g.conf.PollInterval().String(),
		StateDir:     g.conf.StateDir(),
		LogFile:      g.conf.LogFile(),
		Telegram:     g.conf.TelegramBotToken() != "" && g.conf.TelegramChatID() != 0,
	})
}

// postCheck runs an immediate poll cycle, to avoid waiting for the next
// scheduled one.
func (g *Guardian) postCheck(c *gin.Context) {
	g.RunOnce(c.Request.Context())
	c.IndentedJSON(http.StatusOK, g.State())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"version":   version.Version,
		"gitCommit": version.GitCommit,
	})
}
