// Package player drives mpv through its JSON IPC socket and exposes it as a playback host.
package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ErrPropertyUnavailable is mpv's answer for a property that has no value right now,
// e.g. time-pos while nothing is loaded.
var ErrPropertyUnavailable = errors.New("property unavailable")

// CommandError is an error reported by mpv for a command it received. It is never retried.
type CommandError struct {
	Command string
	Reason  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Reason)
}

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcResponse is a line received from mpv's IPC socket: a command reply or a broadcast event.
type ipcResponse struct {
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
	RequestID *int64      `json:"request_id"`
	Event     string      `json:"event"`
}

func (r *ipcResponse) answers(id int64) bool {
	return r.Event == "" && r.RequestID != nil && *r.RequestID == id
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	maxLineSize  = 1 << 20
)

var lastRequestID atomic.Int64

func nextRequestID() int64 {
	return lastRequestID.Add(1)
}

// Client sends commands to one mpv IPC socket. It is safe for concurrent use;
// every command gets its own connection.
type Client struct {
	socketPath string
}

// NewClient returns a client for the mpv IPC server listening on socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Socket returns the IPC socket path.
func (c *Client) Socket() string {
	return c.socketPath
}

// Command runs an mpv input command and returns its data.
// Connection failures are retried; errors reported by mpv are not.
func (c *Client) Command(command ...interface{}) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(c.socketPath, command)
		if err == nil {
			return result, nil
		}

		var cmdErr *CommandError
		if errors.As(err, &cmdErr) || errors.Is(err, ErrPropertyUnavailable) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// Get reads a property.
func (c *Client) Get(property string) (interface{}, error) {
	data, err := c.Command("get_property", property)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", property, err)
	}
	return data, nil
}

// Set writes a property.
func (c *Client) Set(property string, value interface{}) error {
	if _, err := c.Command("set_property", property, value); err != nil {
		return fmt.Errorf("set %s: %w", property, err)
	}
	return nil
}

// GetFloat reads a numeric property.
func (c *Client) GetFloat(property string) (float64, error) {
	data, err := c.Get(property)
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", property, data)
	}
	return val, nil
}

// GetBool reads a flag property.
func (c *Client) GetBool(property string) (bool, error) {
	data, err := c.Get(property)
	if err != nil {
		return false, err
	}

	val, ok := data.(bool)
	if !ok {
		return false, fmt.Errorf("property %s: expected bool, got %T", property, data)
	}
	return val, nil
}

// doSendCommand performs a single IPC command attempt. mpv broadcasts events to every client,
// so lines are read until the one answering this request.
func doSendCommand(socketPath string, command []interface{}) (interface{}, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	id := nextRequestID()
	if err := writeCommand(conn, id, command); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := newLineScanner(conn)
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if !resp.answers(id) {
			continue
		}
		return resp.Data, replyError(command, resp.Error)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed before reply")
}

func writeCommand(conn net.Conn, id int64, command []interface{}) error {
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func newLineScanner(conn net.Conn) *bufio.Scanner {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)
	return scanner
}

func replyError(command []interface{}, reason string) error {
	switch reason {
	case "", "success":
		return nil
	case "property unavailable":
		return ErrPropertyUnavailable
	}

	name := "command"
	if len(command) > 0 {
		name = fmt.Sprint(command[0])
	}
	return &CommandError{Command: name, Reason: reason}
}
