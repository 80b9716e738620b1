package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SocketName is the daemon socket's file name inside Dir.
	SocketName = "shellwm.sock"
	// SocketEnv names an explicit socket path, so several shell sessions
	// can each run their own daemon.
	SocketEnv = "SHELLWM_SOCKET"
)

// Dir returns the runtime directory holding the shellwm socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/shellwm-runtime-<uid> (created private to the user)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}
	return privateTempDir(fmt.Sprintf("shellwm-runtime-%d", uid))
}

// SocketPath returns $SHELLWM_SOCKET, or SocketName inside Dir.
func SocketPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(SocketEnv)); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SocketName), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// privateTempDir creates /tmp/<name> with mode 0700,
// tightening the mode of a directory left behind with looser permissions.
func privateTempDir(name string) (string, error) {
	dir := filepath.Join("/tmp", name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to stat runtime dir: %w", err)
	}
	if info.Mode().Perm() != 0o700 {
		if err := os.Chmod(dir, 0o700); err != nil {
			return "", fmt.Errorf("runtime dir %s has mode %v: %w", dir, info.Mode().Perm(), err)
		}
	}
	return dir, nil
}
