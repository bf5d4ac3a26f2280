package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// maxFileSize bounds the config file.
const maxFileSize = 1 << 20

// systemDir holds machine-wide configuration.
const systemDir = "/etc/devtrack"

// Config file errors returned by Load.
var (
	ErrConfigLocation    = errors.New("config file must live under ~/.config/devtrack or /etc/devtrack")
	ErrConfigPermissions = errors.New("config file must have mode 0600 or 0400")
	ErrConfigTooLarge    = errors.New("config file exceeds 1MB")
)

// DefaultPath returns ~/.config/devtrack/config.yaml.
func DefaultPath() (string, error) {
	dir, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates ~/.config/devtrack with mode 0700.
func EnsureConfigDir() error {
	dir, err := userDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

func userDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "devtrack"), nil
}

// readConfigFile checks path's location, then mode and size on the opened
// descriptor. A missing file yields nil content.
func readConfigFile(path string) ([]byte, error) {
	if err := checkLocation(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if perm := info.Mode().Perm(); runtime.GOOS != "windows" && perm != 0600 && perm != 0400 {
		return nil, fmt.Errorf("%w: %s is %v", ErrConfigPermissions, path, perm)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrConfigTooLarge, path, info.Size())
	}

	content, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return content, nil
}

// checkLocation resolves path, following symlinks when it exists, and
// requires it to be inside one of the config directories.
func checkLocation(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	home, err := userDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{home, systemDir} {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("%w: got %s", ErrConfigLocation, abs)
}
