package client

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/battguard/battguard/pkg/daemon"
	"github.com/battguard/battguard/pkg/monitor"
)

func (c *Client) GetStatus() (*daemon.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to get status")
	}

	var st daemon.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetConfig() (*daemon.ConfigView, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to get config")
	}

	var cv daemon.ConfigView
	if err := json.Unmarshal([]byte(ret), &cv); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal config")
	}
	return &cv, nil
}

// Check asks the daemon for an immediate poll cycle and returns the notify
// state after it.
func (c *Client) Check() (monitor.State, error) {
	ret, err := c.Post("/check", "")
	if err != nil {
		return monitor.StateNeutral, pkgerrors.Wrap(err, "failed to trigger check")
	}

	var st string
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return monitor.StateNeutral, pkgerrors.Wrap(err, "failed to unmarshal state")
	}
	return monitor.ParseState(st), nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to get version")
	}

	var v struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrap(err, "failed to unmarshal version")
	}
	return v.Version, nil
}
