package audit

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/newtron-network/newtroute/pkg/gobgp"
	"github.com/newtron-network/newtroute/pkg/runner"
)

func newTestLogger(t *testing.T, rotation RotationConfig) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(path, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, path
}

func TestEvent_New(t *testing.T) {
	event := NewEvent("node1", "provision", KindCommand, "ip link add br.100 type bridge")

	if event.Host != "node1" || event.Operation != "provision" || event.Kind != KindCommand {
		t.Errorf("event = %+v", event)
	}
	if event.ID == "" {
		t.Error("ID should not be empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if event.User == "" {
		t.Error("User should be set")
	}
}

func TestEvent_WithResult(t *testing.T) {
	ok := NewEvent("h", "load", KindPath, "p").WithResult(nil)
	if !ok.Success || ok.Error != "" {
		t.Errorf("WithResult(nil) = %+v", ok)
	}

	failed := NewEvent("h", "load", KindPath, "p").WithResult(errors.New("refused"))
	if failed.Success || failed.Error != "refused" {
		t.Errorf("WithResult(err) = %+v", failed)
	}
}

func TestFileLogger_QueryFilters(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	events := []*Event{
		NewEvent("gobgp1", "load", KindCommand, "gobgp vrf add Vrf_one").WithResult(errors.New("exists")),
		NewEvent("gobgp1", "load", KindPath, "Vrf_one 203.0.113.36/32").WithVRF("Vrf_one").WithResult(nil),
		NewEvent("node1", "provision", KindCommand, "ip link add br.100 type bridge").WithResult(nil),
		NewEvent("node1", "provision", KindCommand, "ip link set dev br.100 up").WithResult(nil),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"host", Filter{Host: "node1"}, 2},
		{"operation", Filter{Operation: "load"}, 2},
		{"kind", Filter{Kind: KindPath}, 1},
		{"vrf", Filter{VRF: "Vrf_one"}, 1},
		{"success only", Filter{SuccessOnly: true}, 3},
		{"failure only", Filter{FailureOnly: true}, 1},
		{"limit", Filter{Limit: 3}, 3},
		{"offset", Filter{Offset: 3}, 1},
		{"offset beyond", Filter{Offset: 10}, 0},
		{"time range", Filter{StartTime: time.Now().Add(-time.Hour), EndTime: time.Now().Add(time.Hour)}, 4},
		{"future start", Filter{StartTime: time.Now().Add(time.Hour)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := logger.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("Query(%+v) returned %d events, want %d", tt.filter, len(results), tt.want)
			}
		})
	}
}

func TestFileLogger_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")
	logger, err := NewFileLogger(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger should create directories: %v", err)
	}
	logger.Close()
}

func TestFileLogger_QueryMalformedJSON(t *testing.T) {
	logger, path := newTestLogger(t, RotationConfig{})
	logger.Log(NewEvent("h", "load", KindPath, "p").WithResult(nil))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("not json\n")
	f.Close()

	results, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("malformed lines should be skipped, got %d events", len(results))
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, path := newTestLogger(t, RotationConfig{MaxSize: 100, MaxBackups: 2})

	for i := 0; i < 5; i++ {
		if err := logger.Log(NewEvent("node1", "provision", KindCommand, "ip link set dev br.100 up").WithResult(nil)); err != nil {
			t.Fatalf("Log failed on iteration %d: %v", i, err)
		}
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 || len(matches) > 2 {
		t.Errorf("backups = %d, want 1..2", len(matches))
	}
}

type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	return "", errors.New("exit status 2")
}

func TestRunner(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})
	rec := runner.NewPreview(nil)

	r := NewRunner(rec, logger, "node1", "provision")
	if _, err := r.Run(context.Background(), "ip", "link", "add", "br.100", "type", "bridge"); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRunner(failingRunner{}, logger, "node1", "provision").Run(context.Background(), "ip", "link", "set", "dev", "br.100", "up"); err == nil {
		t.Fatal("wrapped runner should pass the error through")
	}

	if n := len(rec.Commands()); n != 1 {
		t.Errorf("inner runner saw %d commands, want 1", n)
	}
	events, err := logger.Query(Filter{Kind: KindCommand})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("journaled %d events, want 2", len(events))
	}
	if events[0].Target != "ip link add br.100 type bridge" || !events[0].Success {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[1].Success || !strings.Contains(events[1].Error, "exit status 2") {
		t.Errorf("event[1] = %+v", events[1])
	}
}

func TestPathAdder(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})
	preview := &gobgp.Preview{}

	route := gobgp.Route{
		VRF:     "Vrf_one",
		Prefix:  netip.MustParsePrefix("203.0.113.36/32"),
		ASPath:  []uint32{64496, 64496},
		NextHop: "192.168.100.1",
		Origin:  gobgp.OriginIncomplete,
	}
	if err := NewPathAdder(preview, logger, "gobgp1", "load").AddPath(context.Background(), route); err != nil {
		t.Fatal(err)
	}

	events, err := logger.Query(Filter{VRF: "Vrf_one"})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != KindPath || events[0].Host != "gobgp1" {
		t.Errorf("events = %+v", events)
	}
}
