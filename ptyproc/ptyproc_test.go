package ptyproc

import (
	"testing"

	"github.com/corvidterm/corvid/config"
)

func TestShellArgsSourceRC(t *testing.T) {
	got := shellArgs("bash", true)
	if len(got) != 1 || got[0] != "-i" {
		t.Fatalf("expected [-i] for rc-sourcing bash, got %v", got)
	}
}

func TestShellArgsNoSourceRC(t *testing.T) {
	cases := map[string][]string{
		"bash": {"--noprofile", "--norc", "-i"},
		"zsh":  {"--no-rcs", "-i"},
		"fish": {"--no-config", "-i"},
		"ksh":  {"-i"},
	}
	for shell, want := range cases {
		got := shellArgs(shell, false)
		if len(got) != len(want) {
			t.Fatalf("%s: expected %v, got %v", shell, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: expected %v, got %v", shell, want, got)
			}
		}
	}
}

func TestFindShellHonorsConfigOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Shell.Path = "/bin/sh"
	if got := findShell(cfg); got != "/bin/sh" {
		t.Fatalf("expected config override /bin/sh, got %q", got)
	}
}
