package config

import "testing"

func TestDefaultHasEmptyAdditionalEnv(t *testing.T) {
	cfg := Default()
	if cfg.Shell.AdditionalEnv == nil {
		t.Fatalf("Default() must initialize AdditionalEnv, not leave it nil")
	}
	if len(cfg.Shell.AdditionalEnv) != 0 {
		t.Fatalf("Default() should have no additional env entries")
	}
	if cfg.Shell.Path != "" {
		t.Fatalf("Default() should not override the shell path")
	}
	if cfg.Shell.SourceRC {
		t.Fatalf("Default() should not source rc files")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := Default()
	cfg.Shell.Path = "/bin/zsh"
	cfg.Shell.SourceRC = true
	cfg.Shell.AdditionalEnv["FOO"] = "bar"

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Shell.Path != "/bin/zsh" {
		t.Fatalf("expected shell path /bin/zsh, got %q", loaded.Shell.Path)
	}
	if !loaded.Shell.SourceRC {
		t.Fatalf("expected SourceRC=true after round trip")
	}
	if loaded.Shell.AdditionalEnv["FOO"] != "bar" {
		t.Fatalf("expected AdditionalEnv[FOO]=bar, got %q", loaded.Shell.AdditionalEnv["FOO"])
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load of a missing config file should not error: %v", err)
	}
	if cfg.Shell.Path != "" {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}
