package device

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateRejectsDuplicateKeys(t *testing.T) {
	u := Update{Devices: []Record{{MAC: "aa"}, {MAC: "bb"}, {MAC: "aa"}}}
	err := u.Validate()
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestValidateRejectsEmptyKey(t *testing.T) {
	u := Update{Devices: []Record{{MAC: "aa"}, {MAC: "  "}}}
	if err := u.Validate(); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected empty key error, got %v", err)
	}
}

func TestDecodeWireShape(t *testing.T) {
	raw := `{"devices":[{"mac":"aa:bb","ip":"10.0.0.2","vendor":"Acme","category":"Phone",
		"up_rate":1.5,"down_rate":20,"is_blocked":true,"is_stale":false,
		"domains":["a.com","b.com"],"schedule_start":"22:00","schedule_end":null}],
		"global_stats":{"total_up":1.5,"total_down":20,"kill_switch":true}}`
	var u Update
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := u.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	d := u.Devices[0]
	if d.MAC != "aa:bb" || !d.Blocked || d.Stale || d.DownRate != 20 {
		t.Fatalf("unexpected record %+v", d)
	}
	if d.HasSchedule() {
		t.Fatalf("schedule with a null end should not count as set")
	}
	if d.Status() != BlockedLabel {
		t.Fatalf("blocked device status = %q", d.Status())
	}
	if !u.Stats.KillSwitch || u.Stats.TotalUp != 1.5 {
		t.Fatalf("unexpected stats %+v", u.Stats)
	}
}

func TestEqualComparesDomains(t *testing.T) {
	a := Record{MAC: "aa", Domains: []string{"x", "y"}}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatalf("clone should be equal")
	}
	b.Domains[0] = "z"
	if a.Equal(b) {
		t.Fatalf("different domains should not be equal")
	}
	if a.Domains[0] != "x" {
		t.Fatalf("clone shares backing array with original")
	}
}

func TestActiveCount(t *testing.T) {
	u := Update{Devices: []Record{{MAC: "a"}, {MAC: "b", Stale: true}, {MAC: "c"}}}
	if got := u.ActiveCount(); got != 2 {
		t.Fatalf("expected 2 active, got %d", got)
	}
}
