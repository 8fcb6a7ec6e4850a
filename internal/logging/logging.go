// Package logging provides debug logging to a file.
//
// Logging is off by default. It is enabled with the --debug flag or by
// setting WIP_DEBUG=1, so that subprocesses and scripted runs inherit
// the setting. Logs are JSON lines written to the OS state directory
// unless WIP_DEBUG_FILE points somewhere else.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"

	"github.com/charliek/wip/internal/constants"
)

// Logger is the global logger. It discards everything until Initialize
// enables debug output.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// LogFilePath is the active log file path, empty when logging is disabled.
var LogFilePath string

// Initialize configures the global logger. The debug flag and file may
// come from the command line or from the environment; explicit flags win.
func Initialize(debug bool, debugFile string, maxLogFiles int) error {
	wasExplicit := debug

	if !debug {
		debug = os.Getenv(constants.DebugEnvVar) == "1"
	}
	if debugFile == "" {
		debugFile = os.Getenv(constants.DebugFileEnvVar)
	}
	if maxLogFiles == constants.DefaultMaxLogFiles {
		if env := os.Getenv(constants.MaxLogFilesEnvVar); env != "" {
			if _, err := fmt.Sscanf(env, "%d", &maxLogFiles); err != nil {
				maxLogFiles = constants.DefaultMaxLogFiles
			}
		}
	}

	if !debug {
		Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return nil
	}

	if debugFile == "" {
		dir, err := defaultLogDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		if err := rotateLogs(dir, maxLogFiles); err != nil {
			return err
		}
		debugFile = filepath.Join(dir, uuid.New().String()+".log")
	}

	f, err := os.OpenFile(debugFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	LogFilePath = debugFile

	if wasExplicit {
		fmt.Printf("Debug mode enabled. Logs: %s\n", debugFile)
	}
	return nil
}

// defaultLogDir returns the per-OS directory for wip debug logs.
func defaultLogDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Logs", "wip"), nil
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "wip", "logs"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Local", "wip", "logs"), nil
	default:
		if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
			return filepath.Join(dir, "wip"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "state", "wip"), nil
	}
}

// rotateLogs deletes the oldest log files so that at most max-1 remain,
// leaving room for the one about to be created.
func rotateLogs(dir string, max int) error {
	if max < 1 {
		max = 1
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read log directory: %w", err)
	}

	type logFile struct {
		name    string
		modTime int64
	}
	var logs []logFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logFile{name: entry.Name(), modTime: info.ModTime().UnixNano()})
	}

	if len(logs) < max {
		return nil
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].modTime < logs[j].modTime })
	for _, lf := range logs[:len(logs)-max+1] {
		if err := os.Remove(filepath.Join(dir, lf.name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("rotate logs: %w", err)
		}
	}
	return nil
}
