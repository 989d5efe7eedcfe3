package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetters(t *testing.T) {
	t.Setenv("ENV_TEST_STRING", "abc")
	t.Setenv("ENV_TEST_INT", "42")
	t.Setenv("ENV_TEST_BAD_INT", "forty-two")
	t.Setenv("ENV_TEST_BOOL", "true")
	t.Setenv("ENV_TEST_DURATION", "90s")

	if got := GetString("ENV_TEST_STRING", "x"); got != "abc" {
		t.Errorf("GetString = %q, want %q", got, "abc")
	}
	if got := GetString("ENV_TEST_UNSET", "x"); got != "x" {
		t.Errorf("GetString fallback = %q, want %q", got, "x")
	}
	if got := GetInt("ENV_TEST_INT", 1); got != 42 {
		t.Errorf("GetInt = %d, want 42", got)
	}
	if got := GetInt("ENV_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("GetInt with bad value = %d, want fallback 7", got)
	}
	if got := GetBool("ENV_TEST_BOOL", false); !got {
		t.Errorf("GetBool = false, want true")
	}
	if got := GetDuration("ENV_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("GetDuration = %v, want 90s", got)
	}
}

func TestLoad_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ENV_TEST_FROM_FILE=file\nENV_TEST_PRESET=file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_TEST_PRESET", "process")
	t.Cleanup(func() { os.Unsetenv("ENV_TEST_FROM_FILE") })

	if err := Load(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := os.Getenv("ENV_TEST_FROM_FILE"); got != "file" {
		t.Errorf("ENV_TEST_FROM_FILE = %q, want %q", got, "file")
	}
	if got := os.Getenv("ENV_TEST_PRESET"); got != "process" {
		t.Errorf("ENV_TEST_PRESET = %q, want %q", got, "process")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ENV_TEST_QUOTED=\"unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ENV_TEST_QUOTED") })

	if err := Load(path); err == nil {
		t.Error("Load() error = nil, want an error for an unterminated quote")
	}
}
