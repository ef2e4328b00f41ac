package player

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakeMPV answers the IPC commands the player package sends, backed by a property map.
// Every reply is preceded by an unrelated event, as a busy mpv would interleave them.
type fakeMPV struct {
	socket string
	ln     net.Listener
	wg     sync.WaitGroup

	mu       sync.Mutex
	props    map[string]interface{}
	commands [][]interface{}
	conns    []*fakeConn
}

type fakeConn struct {
	net.Conn
	wmu sync.Mutex
}

func (c *fakeConn) send(v interface{}) {
	b, _ := json.Marshal(v)
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, _ = c.Write(append(b, '\n'))
}

func newFakeMPV(t *testing.T) *fakeMPV {
	// unix socket paths are short; t.TempDir can exceed the limit
	dir, err := os.MkdirTemp("", "tip")
	if err != nil {
		t.Fatal(err)
	}

	socket := filepath.Join(dir, "mpv.sock")
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeMPV{
		socket: socket,
		ln:     ln,
		props:  make(map[string]interface{}),
	}

	f.wg.Add(1)
	go f.accept()

	t.Cleanup(func() {
		ln.Close()
		f.mu.Lock()
		for _, c := range f.conns {
			c.Close()
		}
		f.mu.Unlock()
		f.wg.Wait()
		os.RemoveAll(dir)
	})
	return f
}

func (f *fakeMPV) accept() {
	defer f.wg.Done()
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		c := &fakeConn{Conn: conn}
		f.mu.Lock()
		f.conns = append(f.conns, c)
		f.mu.Unlock()

		f.wg.Add(1)
		go f.serve(c)
	}
}

func (f *fakeMPV) serve(c *fakeConn) {
	defer f.wg.Done()
	defer f.drop(c)

	scanner := bufio.NewScanner(c)
	for scanner.Scan() {
		var req struct {
			Command   []interface{} `json:"command"`
			RequestID int64         `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil || len(req.Command) == 0 {
			continue
		}

		data, reason := f.reply(req.Command)
		c.send(map[string]interface{}{"event": "audio-reconfig"})
		c.send(map[string]interface{}{"data": data, "error": reason, "request_id": req.RequestID})
	}
}

func (f *fakeMPV) drop(c *fakeConn) {
	c.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, x := range f.conns {
		if x == c {
			f.conns = append(f.conns[:i], f.conns[i+1:]...)
			return
		}
	}
}

func (f *fakeMPV) reply(cmd []interface{}) (interface{}, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)

	arg := func(i int) interface{} {
		if i < len(cmd) {
			return cmd[i]
		}
		return nil
	}

	switch arg(0) {
	case "get_property":
		v, ok := f.props[arg(1).(string)]
		if !ok {
			return nil, "property unavailable"
		}
		return v, "success"
	case "set_property":
		f.props[arg(1).(string)] = arg(2)
	case "seek":
		f.props["time-pos"] = arg(1)
	case "bogus":
		return nil, "invalid parameter"
	}
	return nil, "success"
}

func (f *fakeMPV) set(name string, v interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props[name] = v
}

func (f *fakeMPV) get(name string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props[name]
}

// received returns every command named name, in arrival order.
func (f *fakeMPV) received(name string) [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]interface{}
	for _, c := range f.commands {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

// broadcast sends ev to every open connection.
func (f *fakeMPV) broadcast(ev map[string]interface{}) {
	f.mu.Lock()
	conns := append([]*fakeConn(nil), f.conns...)
	f.mu.Unlock()
	for _, c := range conns {
		c.send(ev)
	}
}

func receive[T any](ch <-chan T) (T, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(2 * time.Second):
		var zero T
		return zero, false
	}
}
