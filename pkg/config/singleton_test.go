package config

import (
	"testing"
)

func TestSetAndGetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := NewDefault()
	cfg.Env = "test"
	SetConfig(cfg)

	if got := GetConfig(); got != cfg {
		t.Errorf("GetConfig returned %p, want %p", got, cfg)
	}
	if got := MustGetConfig(); got.Env != "test" {
		t.Errorf("MustGetConfig().Env = %q", got.Env)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)
	SetConfig(nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic when configuration is not initialized")
		}
	}()
	MustGetConfig()
}

func TestReloadConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	path := writeConfig(t, "env: first\n")
	cfg, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if cfg.Env != "first" || GetConfig().Env != "first" {
		t.Errorf("reloaded Env = %q / %q", cfg.Env, GetConfig().Env)
	}

	bad := writeConfig(t, "limits:\n  rate: -1\n")
	if _, err := ReloadConfig(bad); err == nil {
		t.Fatal("expected reload of invalid config to fail")
	}
	if GetConfig().Env != "first" {
		t.Error("failed reload must keep the previous configuration")
	}
}
