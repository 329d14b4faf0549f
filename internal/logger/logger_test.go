package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", sc.Text(), err)
		}
		out = append(out, entry)
	}
	return out
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
			want:    false, // won't log (below INFO)
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

			lines := decodeLines(t, &buf)
			if logged := len(lines) > 0; logged != tt.want {
				t.Fatalf("logged = %v, want %v", logged, tt.want)
			}
			if !tt.want {
				return
			}

			entry := lines[0]
			if entry["message"] != tt.message {
				t.Errorf("message = %v, want %q", entry["message"], tt.message)
			}
			if _, ok := entry["timestamp"]; !ok {
				t.Error("expected timestamp key")
			}
			for k, v := range tt.fields {
				if entry[k] != v {
					t.Errorf("field %s = %v, want %v", k, entry[k], v)
				}
			}
			if tt.err != nil && entry["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %q", entry["error"], tt.err.Error())
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf).With(Fields{"run_id": "abc"})

	logger.Debug("one", nil)
	logger.Warn("two", Fields{"source": "mlh"})

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, entry := range lines {
		if entry["run_id"] != "abc" {
			t.Errorf("expected run_id on every line, got %v", entry)
		}
	}
	if lines[1]["source"] != "mlh" || lines[1]["level"] != "warning" {
		t.Errorf("unexpected second entry: %v", lines[1])
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(LevelWarn, &buf))
	defer SetDefault(prev)

	Debug("debug", nil)
	Info("info", nil)
	Warn("warn", nil)
	Error("error", nil, errors.New("boom"))

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected warn and error only, got %d lines", len(lines))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
