// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
)

// Port is an open byte link to the panel or the display
type Port interface {
	io.Reader
	io.Writer
	io.Closer
}

// Opener opens a named port at a baud rate
type Opener func(name string, baud int) (Port, error)

var (
	// ErrNotConnected is returned when a link has not been opened
	ErrNotConnected = errors.New("link not connected")

	// ErrConnectionClosed is returned when reading from a closed WebSocket link
	ErrConnectionClosed = errors.New("websocket connection closed")
)

// SerialOpener returns an Opener for local serial ports. A non-zero
// readTimeout bounds every Read.
func SerialOpener(readTimeout time.Duration) Opener {
	return func(name string, baud int) (Port, error) {
		mode := &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}

		port, err := serial.Open(name, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
		}

		if readTimeout > 0 {
			if err := port.SetReadTimeout(readTimeout); err != nil {
				port.Close()
				return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
			}
		}

		// Drop anything the board printed before we were listening
		_ = port.ResetInputBuffer()

		return port, nil
	}
}

// ListPorts returns the serial ports present on the system
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// WebSocketPort carries a serial stream over WebSocket binary messages
type WebSocketPort struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool // Track if connection has failed/closed
}

// NewWebSocketPort wraps an established connection
func NewWebSocketPort(conn *websocket.Conn) *WebSocketPort {
	return &WebSocketPort{conn: conn}
}

func (w *WebSocketPort) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	// Buffered data from the last message first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}

		// Panel bridges send lines as either text or binary frames
		if messageType != websocket.BinaryMessage && messageType != websocket.TextMessage {
			continue
		}
		if len(data) == 0 {
			continue
		}

		w.buf = data
		w.bufOffset = copy(p, w.buf)
		return w.bufOffset, nil
	}
}

func (w *WebSocketPort) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying connection
func (w *WebSocketPort) Close() error {
	return w.conn.Close()
}

// DialOptions configures DialWebSocket
type DialOptions struct {
	Username      string
	Password      string
	SkipSSLVerify bool
	Timeout       time.Duration
}

// DialWebSocket connects to a ws:// or wss:// URL with optional HTTP Basic
// auth.
func DialWebSocket(ctx context.Context, wsURL string, opts DialOptions) (*websocket.Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: opts.SkipSSLVerify,
		}
	}

	headers := http.Header{}
	if opts.Username != "" && opts.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return conn, nil
}
