// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/tip-cli/tip/constant"
	"github.com/tip-cli/tip/filesystem"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "TIP_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It prioritizes the XDG_CONFIG_HOME specification on Linux and equivalent user profile paths on Darwin and Windows.
// The path can be explicitly overridden via the TIP_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Tip))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Temp resolves a volatile filesystem path for transient application artifacts such as mpv sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Tip))
}

// Socket resolves the default mpv IPC socket path used when none is configured.
func Socket() string {
	return filepath.Join(Temp(), "mpv.sock")
}

// Lock resolves the lock file guarding a controller attached to the given socket.
// Distinct sockets map to distinct lock files.
func Lock(socket string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(socket)))
	return filepath.Join(Temp(), hex.EncodeToString(sum[:8])+".lock")
}
