package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validToken = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `{
		"version": "1.0",
		"apple_updates_url": "https://support.apple.com/en-us/100100",
		"telegram_bot_token": "`+validToken+`"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != "1.0" {
		t.Errorf("version = %q", cfg.Version)
	}
	if cfg.TelegramBotToken != validToken {
		t.Errorf("token = %q", cfg.TelegramBotToken)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("data dir default = %q", cfg.DataDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AppleUpdatesURL != DefaultAppleUpdatesURL {
		t.Errorf("url = %q", cfg.AppleUpdatesURL)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := writeConfig(t, `{"version": `)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for corrupt config")
	}
}

func TestLoadExpandsEnvInValues(t *testing.T) {
	t.Setenv("TEST_CRAZYONES_FILE_TOKEN", validToken)
	path := writeConfig(t, `{"telegram_bot_token": "${TEST_CRAZYONES_FILE_TOKEN}"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TelegramBotToken != validToken {
		t.Errorf("env not expanded: %q", cfg.TelegramBotToken)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"apple_updates_url": "https://example.com/from-file"}`)
	t.Setenv("CRAZYONES_URL", "https://example.com/from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AppleUpdatesURL != "https://example.com/from-env" {
		t.Errorf("env override lost: %q", cfg.AppleUpdatesURL)
	}
}

func TestValidateToken(t *testing.T) {
	cases := []struct {
		token string
		ok    bool
	}{
		{validToken, true},
		{"1234567890:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1", true},
		{"", false},
		{"no-colon-at-all", false},
		{"1234567:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1", false},   // bot id too short
		{"12345678901:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1", false}, // bot id too long
		{"123456789:short", false},
		{"123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1 ", false}, // trailing space
	}
	for _, c := range cases {
		err := ValidateToken(c.token)
		if c.ok && err != nil {
			t.Errorf("ValidateToken(%q) = %v, want nil", c.token, err)
		}
		if !c.ok && !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken(%q) = %v, want ErrInvalidToken", c.token, err)
		}
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := &Config{TelegramBotToken: validToken, AppleUpdatesURL: "ftp://example.com"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-http url")
	}
}
