package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tip-cli/tip/log"
)

// Event is a broadcast received from mpv.
type Event struct {
	// Name is the event name, e.g. "file-loaded" or "property-change".
	Name string `json:"event"`
	// Property is the observed property of a property-change event.
	Property string      `json:"name"`
	Data     interface{} `json:"data"`
	// Args are the arguments of a client-message event.
	Args []string `json:"args"`
	// Reason is set on end-file events.
	Reason string `json:"reason"`

	RequestID *int64 `json:"request_id"`
}

// EventCallback receives every event in the order mpv sent them.
type EventCallback func(Event)

// observed are the properties watched on the event connection.
var observed = []string{"vo-configured"}

// EventListener keeps one connection open to mpv and dispatches everything mpv broadcasts.
type EventListener struct {
	socketPath string
	callback   EventCallback

	mu      sync.Mutex
	conn    net.Conn
	started bool
	done    chan struct{}
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		done:       make(chan struct{}),
	}
}

// Start connects, subscribes to the observed properties and starts the read loop.
// A listener runs once; calling Start again does nothing.
// Property observers belong to the connection that registered them, so they are set up
// on the persistent one.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.started {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	var last int64
	for i, name := range observed {
		last = nextRequestID()
		if err := writeCommand(conn, last, []interface{}{"observe_property", i + 1, name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	scanner := newLineScanner(conn)
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		conn.Close()
		return fmt.Errorf("set deadline: %w", err)
	}
	for confirmed := false; !confirmed; {
		if !scanner.Scan() {
			conn.Close()
			return fmt.Errorf("observe: %w", errors.Join(errors.New("no reply"), scanner.Err()))
		}
		ev, ok := parseEvent(scanner.Bytes())
		if !ok {
			continue
		}
		if ev.RequestID != nil {
			confirmed = *ev.RequestID == last
			continue
		}
		el.dispatch(ev)
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		conn.Close()
		return fmt.Errorf("clear deadline: %w", err)
	}

	el.conn = conn
	el.started = true
	go el.readLoop(conn, scanner)

	log.Infof("mpv event listener started on %s (observing: %v)", el.socketPath, observed)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	conn, started := el.conn, el.started
	el.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if started {
		<-el.done
	}
}

// Done is closed when the read loop has exited, either after Stop or because mpv went away.
func (el *EventListener) Done() <-chan struct{} {
	return el.done
}

func (el *EventListener) readLoop(conn net.Conn, scanner *bufio.Scanner) {
	defer func() {
		el.mu.Lock()
		el.conn = nil
		el.mu.Unlock()
		conn.Close()
		close(el.done)
	}()

	for scanner.Scan() {
		ev, ok := parseEvent(scanner.Bytes())
		if !ok || ev.RequestID != nil {
			continue
		}
		el.dispatch(ev)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}

func (el *EventListener) dispatch(ev Event) {
	if el.callback != nil && ev.Name != "" {
		el.callback(ev)
	}
}

func parseEvent(line []byte) (Event, bool) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		log.Debugf("skipping unparseable mpv line: %v", err)
		return Event{}, false
	}
	return ev, true
}
