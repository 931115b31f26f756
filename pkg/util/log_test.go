package util

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// saveLoggerState saves the current logger state for restoration
func saveLoggerState() (io.Writer, logrus.Level, logrus.Formatter) {
	return Logger.Out, Logger.Level, Logger.Formatter
}

// restoreLoggerState restores the logger to its previous state
func restoreLoggerState(out io.Writer, level logrus.Level, formatter logrus.Formatter) {
	Logger.SetOutput(out)
	Logger.SetLevel(level)
	Logger.SetFormatter(formatter)
}

func TestSetLogLevel(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := SetLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestSetJSONFormat(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetJSONFormat()

	Logger.Infof("test %s", "json")

	output := buf.String()
	if len(output) == 0 || output[0] != '{' {
		t.Errorf("Expected JSON output starting with '{', got: %s", output)
	}
}

func TestWithVRF(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel("debug")

	WithVRF("Vrf_one").Debug("adding path")
	if !strings.Contains(buf.String(), "vrf=Vrf_one") {
		t.Errorf("expected vrf field in output, got: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel("warn")

	WithVRF("Vrf_one").Debugf("debug %d", 1)
	WithOperation("load").Infof("info %d", 2)
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got: %s", buf.String())
	}

	Warnf("warn %d", 3)
	if !strings.Contains(buf.String(), "warn 3") {
		t.Errorf("expected warn output, got: %s", buf.String())
	}
}

func TestWithOperation(t *testing.T) {
	entry := WithOperation("load")
	if entry.Data["operation"] != "load" {
		t.Errorf("operation field = %v, want load", entry.Data["operation"])
	}
	entry = WithFields(map[string]interface{}{"vrf": "Vrf_two", "vlan": 101})
	if entry.Data["vlan"] != 101 {
		t.Errorf("vlan field = %v, want 101", entry.Data["vlan"])
	}
}
