package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"1234", 1234, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"4294967296", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parsePID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseHandle(t *testing.T) {
	tests := []struct {
		in      string
		want    uintptr
		wantErr bool
	}{
		{"0x1a2b", 0x1a2b, false},
		{"6699", 6699, false},
		{"0xzz", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseHandle(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHandle(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseHandle(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9123\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	out, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "port: 9123") {
		t.Errorf("Expected port from file, got:\n%s", out)
	}
	if !strings.Contains(out, "backend: printwindow") {
		t.Errorf("Expected default backend, got:\n%s", out)
	}

	out, err = execute(t, "--config", path, "config", "show", "--format", "json")
	if err != nil {
		t.Fatalf("config show json failed: %v", err)
	}
	if !strings.Contains(out, `"port": 9123`) {
		t.Errorf("Expected JSON port, got:\n%s", out)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("capture:\n  backend: gdi\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := execute(t, "--config", path, "config", "show", "--format", "yaml"); err == nil {
		t.Error("Expected invalid backend to be rejected")
	}
}

func TestSuspendRejectsBadPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: error\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := execute(t, "--config", path, "suspend", "not-a-pid")
	if err == nil || !strings.Contains(err.Error(), "invalid pid") {
		t.Errorf("Expected invalid pid error, got %v", err)
	}
}
