package feed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const sample = `{"type":"device_update","devices":[{"mac":"aa","ip":"10.0.0.2","is_stale":false,"up_rate":1,"down_rate":2}],"global_stats":{"total_up":1,"total_down":2,"kill_switch":false}}`

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParseDeviceUpdate(t *testing.T) {
	msg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	du, ok := msg.(DeviceUpdate)
	if !ok {
		t.Fatalf("expected DeviceUpdate, got %T", msg)
	}
	if len(du.Devices) != 1 || du.Devices[0].MAC != "aa" || du.Stats.TotalDown != 2 {
		t.Fatalf("unexpected update %+v", du.Update)
	}
}

func TestParseUnrecognizedKind(t *testing.T) {
	msg, err := Parse([]byte(`{"type":"heartbeat"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u, ok := msg.(Unrecognized); !ok || u.Type != "heartbeat" {
		t.Fatalf("expected Unrecognized heartbeat, got %#v", msg)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"devices":[]}`,
		`{"type":"device_update","global_stats":{}}`,
		`{"type":"device_update","devices":[],"global_stats":null}`,
		`{"type":"device_update","devices":"oops","global_stats":{}}`,
		`{"type":"device_update","devices":[{"mac":"a"},{"mac":"a"}],"global_stats":{}}`,
	} {
		if _, err := Parse([]byte(raw)); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestURLFromServer(t *testing.T) {
	got, err := URLFromServer("https://inspector.local:8443/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "wss://inspector.local:8443/ws/updates" {
		t.Fatalf("unexpected url %s", got)
	}
	got, _ = URLFromServer("http://127.0.0.1:8000")
	if got != "ws://127.0.0.1:8000/ws/updates" {
		t.Fatalf("unexpected url %s", got)
	}
	if _, err := URLFromServer("ftp://x"); err == nil {
		t.Fatalf("expected error for ftp scheme")
	}
}

// closingServer upgrades, writes frames, then drops the connection.
func closingServer(t *testing.T, frames []string, accepts *[]time.Time, mu *sync.Mutex) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc(UpdatesPath, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		*accepts = append(*accepts, time.Now())
		mu.Unlock()
		for _, f := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		_ = conn.Close()
	})
	return httptest.NewServer(mux)
}

func TestManagerReconnectsAfterFixedDelay(t *testing.T) {
	var (
		mu      sync.Mutex
		accepts []time.Time
	)
	srv := closingServer(t, []string{sample}, &accepts, &mu)
	defer srv.Close()

	wsURL, err := URLFromServer(srv.URL)
	if err != nil {
		t.Fatalf("url: %v", err)
	}

	var got atomic.Int32
	delay := 40 * time.Millisecond
	m := New(Options{
		URL:            wsURL,
		ReconnectDelay: delay,
		Handler:        func(Message) { got.Add(1) },
		Logger:         quietLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := len(accepts)
		mu.Unlock()
		if n >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for reconnects, saw %d", n)
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(accepts); i++ {
		if gap := accepts[i].Sub(accepts[i-1]); gap < delay {
			t.Fatalf("reconnect %d came after %s, want at least %s", i, gap, delay)
		}
	}
	if m.Attempts() < 3 {
		t.Fatalf("expected at least 3 attempts, got %d", m.Attempts())
	}
	if got.Load() < 2 {
		t.Fatalf("expected updates from each connection, got %d", got.Load())
	}
}

func TestManagerRetriesWhenDialFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	wsURL, _ := URLFromServer(srv.URL)
	srv.Close()

	m := New(Options{URL: wsURL, ReconnectDelay: 10 * time.Millisecond, Logger: quietLogger()})
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("run returned %v", err)
	}
	if m.Attempts() < 3 {
		t.Fatalf("expected repeated dial attempts, got %d", m.Attempts())
	}
}

func TestManagerDiscardsMalformedAndKeepsOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		accepts []time.Time
	)
	second := `{"type":"device_update","devices":[{"mac":"bb"}],"global_stats":{}}`
	srv := closingServer(t, []string{sample, `{"type":`, `{"type":"ping"}`, second}, &accepts, &mu)
	defer srv.Close()
	wsURL, _ := URLFromServer(srv.URL)

	msgs := make(chan Message, 16)
	var states []State
	var stMu sync.Mutex
	m := New(Options{
		URL:            wsURL,
		ReconnectDelay: time.Hour,
		Handler:        func(msg Message) { msgs <- msg },
		OnState: func(s State) {
			stMu.Lock()
			states = append(states, s)
			stMu.Unlock()
		},
		Logger: quietLogger(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	var kinds []string
	for len(kinds) < 3 {
		select {
		case msg := <-msgs:
			switch v := msg.(type) {
			case DeviceUpdate:
				kinds = append(kinds, v.Devices[0].MAC)
			case Unrecognized:
				kinds = append(kinds, v.Type)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out, got %v", kinds)
		}
	}
	cancel()
	<-done

	if kinds[0] != "aa" || kinds[1] != "ping" || kinds[2] != "bb" {
		t.Fatalf("unexpected delivery order %v", kinds)
	}
	if m.Dropped() != 1 {
		t.Fatalf("expected 1 dropped frame, got %d", m.Dropped())
	}
	stMu.Lock()
	defer stMu.Unlock()
	if len(states) < 2 || states[0] != StateConnecting || states[1] != StateConnected {
		t.Fatalf("unexpected state sequence %v", states)
	}
}
