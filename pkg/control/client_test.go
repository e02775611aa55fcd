package control

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSetBlockPostsJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/block", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Fatalf("missing request id header")
		}
		var body struct {
			MAC     string `json:"mac"`
			Blocked bool   `json:"blocked"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.MAC != "aa:bb" || !body.Blocked {
			t.Fatalf("unexpected body %+v", body)
		}
		_, _ = io.WriteString(w, `{"status":"ok","mac":"aa:bb","is_blocked":true}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewWithClient(srv.URL, srv.Client())
	res, err := c.SetBlock(context.Background(), "aa:bb", true)
	if err != nil {
		t.Fatalf("set block: %v", err)
	}
	if !res.Blocked || res.MAC != "aa:bb" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSetKillSwitchUsesQueryParameter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/kill-switch", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("enabled"); got != "true" {
			t.Fatalf("expected enabled=true, got %q", got)
		}
		if r.ContentLength > 0 {
			t.Fatalf("kill switch should not send a body")
		}
		_, _ = io.WriteString(w, `{"status":"ok","global_kill_switch":true}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := NewWithClient(srv.URL, srv.Client()).SetKillSwitch(context.Background(), true)
	if err != nil {
		t.Fatalf("kill switch: %v", err)
	}
	if !res.KillSwitch {
		t.Fatalf("expected kill switch on")
	}
}

func TestNotFoundDetailIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Device not found"}`)
	}))
	defer srv.Close()

	_, err := NewWithClient(srv.URL, srv.Client()).SetSchedule(context.Background(), "zz", "22:00", "06:00")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if !reqErr.NotFound() || reqErr.Detail != "Device not found" {
		t.Fatalf("unexpected error %+v", reqErr)
	}
	if reqErr.Error() != "http 404: Device not found" {
		t.Fatalf("unexpected message %q", reqErr.Error())
	}
}

func TestValidationDetailIsFlattened(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"loc":["query","enabled"],"msg":"field required","type":"value_error.missing"}]}`)
	}))
	defer srv.Close()

	_, err := NewWithClient(srv.URL, srv.Client()).SetKillSwitch(context.Background(), false)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Detail != "query.enabled: field required" {
		t.Fatalf("unexpected detail %q", reqErr.Detail)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"settings":{"interface":null,"scan_interval":30,"paranoid_mode":false,"domain_log_limit":20},"available_interfaces":["lo","eth0"]}`)
		case http.MethodPost:
			var raw map[string]any
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := raw["interface"]; ok {
				t.Fatalf("unset fields should be omitted, got %v", raw)
			}
			if raw["scan_interval"] != float64(60) {
				t.Fatalf("unexpected scan interval %v", raw["scan_interval"])
			}
			_, _ = io.WriteString(w, `{"status":"ok","settings":{"interface":"eth0","scan_interval":60,"paranoid_mode":false}}`)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewWithClient(srv.URL, srv.Client())
	view, err := c.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if view.Settings.Interface != "" || view.Settings.ScanInterval != 30 || len(view.Interfaces) != 2 {
		t.Fatalf("unexpected settings %+v", view)
	}

	interval := 60
	got, err := c.SetSettings(context.Background(), SettingsUpdate{ScanInterval: &interval})
	if err != nil {
		t.Fatalf("set settings: %v", err)
	}
	if got.ScanInterval != 60 || got.Interface != "eth0" {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestNoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewWithClient(srv.URL, srv.Client()).Stats(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestTimeoutBoundsCall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewWithClient(srv.URL, srv.Client()).WithTimeout(50 * time.Millisecond)
	start := time.Now()
	if _, err := c.Stats(context.Background()); err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not applied")
	}
}

func TestDevicesConvertToRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"mac":"aa","ip":"10.0.0.4","vendor":"Acme","category":"Phone"},{"mac":"bb","ip":"","last_known_ip":"10.0.0.5"}]`)
	}))
	defer srv.Close()

	infos, err := NewWithClient(srv.URL, srv.Client()).Devices(context.Background())
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(infos))
	}
	if r := infos[0].Record(); r.Stale || r.IP != "10.0.0.4" {
		t.Fatalf("unexpected record %+v", r)
	}
	if r := infos[1].Record(); !r.Stale || r.IP != "(10.0.0.5)" {
		t.Fatalf("unexpected stale record %+v", r)
	}
}

func TestNewRequiresServer(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrNoServer) {
		t.Fatalf("expected ErrNoServer, got %v", err)
	}
	if _, err := New("ws://host"); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestSettingsUpdateValidate(t *testing.T) {
	iface := " "
	if err := (SettingsUpdate{Interface: &iface}).Validate(); err == nil {
		t.Fatalf("expected empty interface to be rejected")
	}
	low, ok := 4, 300
	if err := (SettingsUpdate{ScanInterval: &low}).Validate(); err == nil {
		t.Fatalf("expected out of range interval to be rejected")
	}
	if err := (SettingsUpdate{ScanInterval: &ok}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !(SettingsUpdate{}).Empty() {
		t.Fatalf("zero update should be empty")
	}
}
