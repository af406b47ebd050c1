package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Format: "json", Writer: &buf}); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Info(context.Background(), "allocation finished",
		String("job", "j-1"),
		Int("teams", 3),
		Bool("degraded", false),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "allocation finished" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["job"] != "j-1" {
		t.Errorf("unexpected job field: %v", entry["job"])
	}
	if src, _ := entry["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Writer: &buf}); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	Get().Info(context.Background(), "hidden")
	Get().Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn entry missing: %q", out)
	}
}

func TestLoggerUnknownSettings(t *testing.T) {
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := InitWithOptions(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Format: "json", Writer: &buf}); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("repair").Info(context.Background(), "pass", Int("moves", 2))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	group, ok := entry["repair"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields grouped under name, got %v", entry)
	}
	if group["moves"] != float64(2) {
		t.Errorf("unexpected moves: %v", group["moves"])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "ignored")
	if l.Named("x") == nil {
		t.Fatal("named nop logger is nil")
	}
}
