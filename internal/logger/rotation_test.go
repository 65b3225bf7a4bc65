package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateLoggerWithRotation_FileOutputRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	cfg := DefaultLogConfig()
	cfg.Output = "file:" + logPath
	cfg.Rotation = &RotationConfig{
		MaxSize:    "1B",
		MaxBackups: 5,
	}

	l, err := CreateLoggerWithRotation(cfg)
	if err != nil {
		t.Fatalf("CreateLoggerWithRotation: %v", err)
	}
	compLogger := l.WithComponent(ComponentApp)

	compLogger.Info("first message")
	compLogger.Info("second message")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var rotated bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "test.log.") {
			rotated = true
		}
	}
	if !rotated {
		t.Fatal("expected at least one rotated backup file after exceeding MaxSize")
	}
}

func TestCreateLoggerWithRotation_NoRotationConfigUsesPlainOutput(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "plain.log")

	cfg := DefaultLogConfig()
	cfg.Output = "file:" + logPath
	cfg.Rotation = nil

	l, err := CreateLoggerWithRotation(cfg)
	if err != nil {
		t.Fatalf("CreateLoggerWithRotation: %v", err)
	}
	l.WithComponent(ComponentApp).Info("hello")

	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log file, got %d", len(entries))
	}
}

func TestCreateLoggerWithRotation_StdoutSkipsRotation(t *testing.T) {
	cfg := DefaultLogConfig()
	cfg.Output = "stdout"

	if _, err := CreateLoggerWithRotation(cfg); err != nil {
		t.Fatalf("CreateLoggerWithRotation: %v", err)
	}
}

func TestEnvironmentConfig_RotateDisableAndOverrides(t *testing.T) {
	t.Setenv("SIGHELPERD_LOG_ROTATE", "false")
	cfg := EnvironmentConfig()
	if cfg.Rotation != nil {
		t.Fatal("expected Rotation to be nil when SIGHELPERD_LOG_ROTATE=false")
	}
}

func TestEnvironmentConfig_RotateOverridesApply(t *testing.T) {
	t.Setenv("SIGHELPERD_LOG_ROTATE_MAX_SIZE", "5MB")
	t.Setenv("SIGHELPERD_LOG_ROTATE_MAX_AGE", "1d")
	t.Setenv("SIGHELPERD_LOG_ROTATE_MAX_BACKUPS", "7")
	t.Setenv("SIGHELPERD_LOG_ROTATE_COMPRESS", "false")

	cfg := EnvironmentConfig()
	if cfg.Rotation == nil {
		t.Fatal("expected Rotation config to be present")
	}
	if cfg.Rotation.MaxSize != "5MB" {
		t.Errorf("got MaxSize %q, want 5MB", cfg.Rotation.MaxSize)
	}
	if cfg.Rotation.MaxAge != "1d" {
		t.Errorf("got MaxAge %q, want 1d", cfg.Rotation.MaxAge)
	}
	if cfg.Rotation.MaxBackups != 7 {
		t.Errorf("got MaxBackups %d, want 7", cfg.Rotation.MaxBackups)
	}
	if cfg.Rotation.Compress {
		t.Error("expected Compress to be false")
	}
}

func TestNewRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "w.log")

	rw, err := NewRotatingWriter(logPath, 1, 0, 3, false)
	if err != nil {
		t.Fatalf("NewRotatingWriter: %v", err)
	}
	defer rw.Close()

	if _, err := rw.Write([]byte("a")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := rw.Write([]byte("b")); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected a rotated backup plus the active log file, got %d entries", len(entries))
	}
}
