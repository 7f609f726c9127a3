// Package obsws adapts the goobs obs-websocket v5 client to the narrow
// connection interface the controller consumes.
package obsws

import (
	"fmt"

	"github.com/andreykaipov/goobs"

	"github.com/mathiascn/obs-controller/internal/controller"
)

// Dialer opens obs-websocket sessions. The zero value is ready to use.
type Dialer struct{}

// Dial connects and authenticates against the OBS websocket server.
func (Dialer) Dial(host string, port int, password string) (controller.Conn, error) {
	client, err := goobs.New(fmt.Sprintf("%s:%d", host, port), goobs.WithPassword(password))
	if err != nil {
		return nil, err
	}
	return &conn{client: client}, nil
}

// conn wraps one live goobs client.
type conn struct {
	client *goobs.Client
}

func (c *conn) StartReplayBuffer() error {
	_, err := c.client.Outputs.StartReplayBuffer()
	return err
}

func (c *conn) StopReplayBuffer() error {
	_, err := c.client.Outputs.StopReplayBuffer()
	return err
}

func (c *conn) SaveReplayBuffer() error {
	_, err := c.client.Outputs.SaveReplayBuffer()
	return err
}

func (c *conn) Version() (string, error) {
	resp, err := c.client.General.GetVersion()
	if err != nil {
		return "", err
	}
	return resp.ObsVersion, nil
}

func (c *conn) Close() error {
	return c.client.Disconnect()
}
