// Package ptyproc spawns the user's shell behind a pseudo-terminal and
// exposes it as the PTY collaborator cmd/corvid wires into the run loop.
package ptyproc

import (
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/corvidterm/corvid/config"
)

// Session owns a PTY master and the shell process attached to its slave.
type Session struct {
	cmd *exec.Cmd
	pty *os.File

	mu sync.Mutex

	exitedMu sync.Mutex
	exited   bool
}

// Start allocates a PTY of the given size and execs the configured shell as
// a session leader attached to it.
func Start(cfg *config.Config, cols, rows uint16) (*Session, error) {
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	shellPath := findShell(cfg)
	shellBase := shellPath
	if idx := strings.LastIndex(shellPath, "/"); idx >= 0 {
		shellBase = shellPath[idx+1:]
	}

	cmd := exec.Command(shellPath, shellArgs(shellBase, cfg.Shell.SourceRC)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Env = buildEnv(cfg, currentUser, shellPath)
	cmd.Dir = currentUser.HomeDir

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, err
	}

	s := &Session{cmd: cmd, pty: ptmx}
	go func() {
		cmd.Wait()
		s.exitedMu.Lock()
		s.exited = true
		s.exitedMu.Unlock()
	}()
	return s, nil
}

// shellArgs picks the interactive-shell flags, optionally sourcing the
// user's own rc files.
func shellArgs(shellBase string, sourceRC bool) []string {
	if sourceRC {
		switch shellBase {
		case "fish":
			return []string{"-i"}
		default:
			return []string{"-i"}
		}
	}
	switch shellBase {
	case "bash":
		return []string{"--noprofile", "--norc", "-i"}
	case "zsh":
		return []string{"--no-rcs", "-i"}
	case "fish":
		return []string{"--no-config", "-i"}
	default:
		return []string{"-i"}
	}
}

func buildEnv(cfg *config.Config, u *user.User, shellPath string) []string {
	env := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:" + os.Getenv("PATH"),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"HOME=" + u.HomeDir,
		"USER=" + u.Username,
		"SHELL=" + shellPath,
		"LANG=en_US.UTF-8",
		"LC_ALL=en_US.UTF-8",
	}
	for k, v := range cfg.Shell.AdditionalEnv {
		env = append(env, k+"="+v)
	}
	return env
}

// findShell resolves the shell binary: config override, then /etc/passwd,
// then a fallback list of common shells.
func findShell(cfg *config.Config) string {
	if cfg.Shell.Path != "" {
		if _, err := os.Stat(cfg.Shell.Path); err == nil {
			return cfg.Shell.Path
		}
	}
	if currentUser, err := user.Current(); err == nil {
		if shell := passwdShell(currentUser.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}
	for _, shell := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func passwdShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Read implements io.Reader by reading from the PTY master.
func (s *Session) Read(buf []byte) (int, error) {
	return s.pty.Read(buf)
}

// Write implements io.Writer by writing to the PTY master.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Write(data)
}

// WriteReply implements vt.ReplyWriter.
func (s *Session) WriteReply(data []byte) {
	s.Write(data)
}

// Resize applies a new window size to the PTY.
func (s *Session) Resize(cols, rows uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pty.Setsize(s.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

// Fd returns the PTY master's file descriptor, for select()-style polling.
func (s *Session) Fd() uintptr {
	return s.pty.Fd()
}

// HasExited reports whether the shell process has exited.
func (s *Session) HasExited() bool {
	s.exitedMu.Lock()
	defer s.exitedMu.Unlock()
	return s.exited
}

// Close kills the child process (if still running) and closes the PTY.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	return s.pty.Close()
}

// ExitCode returns the child's exit code once it has exited, or -1.
func (s *Session) ExitCode() int {
	if s.cmd.ProcessState == nil {
		return -1
	}
	return s.cmd.ProcessState.ExitCode()
}
