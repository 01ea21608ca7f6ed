// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hostlink

import (
	"context"
	"fmt"
	"sync"

	"github.com/Thermoquad/kspio/pkg/bridge"
	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/Thermoquad/kspio/pkg/sim"
	"github.com/gorilla/websocket"
)

// Client is a sim.Host backed by the companion plugin.
//
// State getters answer from the last state the plugin pushed. Setters send a
// command and update the local copy straight away so that repeated reads
// within a tick see the new value. The main throttle is delivered with the
// next FLIGHT_CTRL frame.
type Client struct {
	conn *websocket.Conn
	log  logging.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	vessel  sim.VesselState
	active  bool
	ap      AutopilotState
	control ControlState
	applied int
	sendErr error
}

// Dial connects to the plugin at wsURL
func Dial(ctx context.Context, wsURL string, opts bridge.DialOptions, log logging.Logger) (*Client, error) {
	conn, err := bridge.DialWebSocket(ctx, wsURL, opts)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, log), nil
}

// NewClient wraps an established plugin connection
func NewClient(conn *websocket.Conn, log logging.Logger) *Client {
	if log == nil {
		log = logging.Noop()
	}
	return &Client{
		conn: conn,
		log:  log.With(logging.String("component", "hostlink")),
	}
}

// Run applies state messages until the connection closes or ctx is done.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("host link read failed: %w", err)
		}

		if messageType != websocket.BinaryMessage {
			continue
		}

		if err := c.Handle(data); err != nil {
			c.log.Debug(ctx, "ignored host message", logging.Err(err))
		}
	}
}

// Handle applies one encoded state message.
func (c *Client) Handle(data []byte) error {
	msgType, payload, err := ParseMessage(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch msgType {
	case MsgVesselState:
		c.vessel, c.active = ParseVesselState(payload)
	case MsgAutopilotState:
		c.ap = ParseAutopilotState(payload)
	case MsgControlState:
		c.control = ParseControlState(payload)
	default:
		return fmt.Errorf("unexpected message %s (0x%02X)", MessageTypeName(msgType), msgType)
	}

	c.applied++
	return nil
}

// Applied returns the number of state messages applied
func (c *Client) Applied() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}

// Err returns the last send error, if any
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendErr
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(msgType uint8, payload map[int]interface{}) {
	data, err := EncodeMessage(msgType, payload)
	if err == nil {
		c.writeMu.Lock()
		err = c.conn.WriteMessage(websocket.BinaryMessage, data)
		c.writeMu.Unlock()
	}

	if err != nil {
		c.log.Warn(context.Background(), "host command failed",
			logging.String("message", MessageTypeName(msgType)),
			logging.Err(err))
		c.mu.Lock()
		c.sendErr = err
		c.mu.Unlock()
	}
}

// ActiveVessel implements sim.Host
func (c *Client) ActiveVessel() (sim.VesselState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vessel, c.active
}

// SetActionGroup implements sim.Host
func (c *Client) SetActionGroup(group sim.ActionGroup, active bool) {
	c.send(MsgSetActionGroup, NewSetActionGroup(group, active))
}

// ActivateNextStage implements sim.Host
func (c *Client) ActivateNextStage() {
	c.send(MsgActivateStage, nil)
}

// SetUIMode implements sim.Host
func (c *Client) SetUIMode(mode sim.UIMode) {
	c.mu.Lock()
	c.control.UIMode = mode
	c.mu.Unlock()
	c.send(MsgSetUIMode, NewSetUIMode(mode))
}

// TimeWarpIndex implements sim.Host
func (c *Client) TimeWarpIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control.TimeWarp
}

// SetTimeWarpIndex implements sim.Host. The plugin clamps the upper bound.
func (c *Client) SetTimeWarpIndex(index int) {
	if index < 0 {
		index = 0
	}
	c.mu.Lock()
	c.control.TimeWarp = index
	c.mu.Unlock()
	c.send(MsgSetTimeWarp, NewSetTimeWarp(index))
}

// MainThrottle implements sim.Host
func (c *Client) MainThrottle() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control.Throttle
}

// SetMainThrottle implements sim.Host
func (c *Client) SetMainThrottle(value float32) {
	c.mu.Lock()
	c.control.Throttle = value
	c.mu.Unlock()
}

// Autopilot implements sim.Host
func (c *Client) Autopilot() sim.Autopilot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ap.Present {
		return nil
	}
	return remoteAutopilot{c}
}

// AutopilotUI implements sim.Host
func (c *Client) AutopilotUI() sim.AutopilotUI {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ap.Present || len(c.ap.Buttons) == 0 {
		return nil
	}
	return remoteAutopilotUI{c}
}

// NextCamera implements sim.CameraSwitcher. It does nothing unless the
// plugin reported a camera mod.
func (c *Client) NextCamera() {
	c.mu.Lock()
	hasCamera := c.control.HasCamera
	c.mu.Unlock()
	if !hasCamera {
		return
	}
	c.send(MsgNextCamera, nil)
}

// SendFlightCtrl implements sim.FlightCtrlSink
func (c *Client) SendFlightCtrl(state sim.FlightCtrlState) {
	c.send(MsgFlightCtrl, NewFlightCtrl(state))
}

type remoteAutopilot struct {
	c *Client
}

func (a remoteAutopilot) Mode() sim.AutopilotMode {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return a.c.ap.Mode
}

func (a remoteAutopilot) SetMode(mode sim.AutopilotMode) bool {
	if !a.CanSetMode(mode) {
		return false
	}
	a.c.mu.Lock()
	a.c.ap.Mode = mode
	a.c.mu.Unlock()
	a.c.send(MsgSetAutopilotMode, NewSetAutopilotMode(mode))
	return true
}

func (a remoteAutopilot) CanSetMode(mode sim.AutopilotMode) bool {
	if mode < 0 || mode >= 64 {
		return false
	}
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return a.c.ap.Modes&(1<<uint(mode)) != 0
}

type remoteAutopilotUI struct {
	c *Client
}

func (u remoteAutopilotUI) ButtonCount() int {
	u.c.mu.Lock()
	defer u.c.mu.Unlock()
	return len(u.c.ap.Buttons)
}

func (u remoteAutopilotUI) ButtonState(n int) sim.ButtonState {
	u.c.mu.Lock()
	defer u.c.mu.Unlock()
	if n < 0 || n >= len(u.c.ap.Buttons) {
		return sim.ButtonDisabled
	}
	return u.c.ap.Buttons[n]
}

func (u remoteAutopilotUI) SetButtonState(n int, state sim.ButtonState) {
	u.c.mu.Lock()
	if n >= 0 && n < len(u.c.ap.Buttons) {
		u.c.ap.Buttons[n] = state
	}
	u.c.mu.Unlock()
	u.c.send(MsgSetModeButton, NewSetModeButton(n, state))
}
