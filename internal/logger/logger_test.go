package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Fatalf("log() logged = %v, want %v", logged, tt.want)
			}
			if !logged {
				return
			}

			entry := decodeLines(t, &buf)[0]
			if entry["message"] != tt.message {
				t.Errorf("message = %v, want %v", entry["message"], tt.message)
			}
			if entry["level"] != string(tt.level) {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if _, ok := entry["timestamp"]; !ok {
				t.Error("entry has no timestamp")
			}
			for k, v := range tt.fields {
				if entry[k] != v {
					t.Errorf("field %s = %v, want %v", k, entry[k], v)
				}
			}
			if tt.err != nil && entry["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %v", entry["error"], tt.err.Error())
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.minLevel, &buf)

			logger.log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer

	logger, err := Configure("debug", FormatConsole, &buf)
	if err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	logger.Debug("console entry", Fields{"rows": 3})
	if !strings.Contains(buf.String(), "console entry") || !strings.Contains(buf.String(), "DEBUG") {
		t.Errorf("console output = %q", buf.String())
	}

	if _, err := Configure("loud", FormatJSON, &buf); err == nil {
		t.Error("Configure(loud) expected error")
	}
	if _, err := Configure("info", "xml", &buf); err == nil {
		t.Error("Configure(xml) expected error")
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("test_counter")
	m.IncrCounter("test_counter")
	m.AddCounter("test_counter", 3)

	snapshot := m.GetSnapshot()
	counters := snapshot["counters"].(map[string]int64)

	if counters["test_counter"] != 5 {
		t.Errorf("Counter = %v, want 5", counters["test_counter"])
	}
	if m.Counter("test_counter") != 5 {
		t.Errorf("Counter() = %v, want 5", m.Counter("test_counter"))
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("rows", 12)
	m.SetGauge("rows", 40)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	if gauges["rows"] != 40 {
		t.Errorf("Gauge = %v, want 40", gauges["rows"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("harvest.duration", 100*time.Millisecond)
	m.RecordTiming("harvest.duration", 200*time.Millisecond)
	m.RecordTiming("harvest.duration", 150*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})

	got := timings["harvest.duration"]
	if got["count"].(int) != 3 {
		t.Errorf("Timing count = %v, want 3", got["count"])
	}
	if got["min"].(string) != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", got["min"])
	}
	if got["max"].(string) != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", got["max"])
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(prev)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if entries := decodeLines(t, &buf); len(entries) != 4 {
		t.Errorf("wrote %d entries, want 4", len(entries))
	}

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if GetMetricsSnapshot() == nil {
		t.Error("GetMetricsSnapshot() returned nil")
	}
}
