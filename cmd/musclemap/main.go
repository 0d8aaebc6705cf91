package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/musclemap/internal/config"
	"github.com/ayusman/musclemap/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// rootOptions are the flags shared by every command.
type rootOptions struct {
	dbPath  string
	tuning  string
	verbose bool
}

func main() {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "musclemap",
		Short: "Estimate muscle usage from pose landmarks",
		Long: `musclemap turns body landmarks into per-frame muscle usage, joint stress
and range of motion scores. Use "serve" to score frames sent over HTTP or
WebSocket, or "analyze" to score recorded video files.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (default ~/.musclemap/musclemap.db)")
	cmd.PersistentFlags().StringVar(&opts.tuning, "tuning", "", "YAML tuning file overriding the built-in table")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts), newAnalyzeCmd(opts), newTuningCmd(opts))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

// newLogger builds the process logger. Verbose output is human readable and
// includes debug messages; otherwise logs are JSON at info level.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// dataDir returns ~/.musclemap, creating it if needed.
func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, ".musclemap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// openStore opens the database at path, or the default database when path
// is empty.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "musclemap.db")
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return st, nil
}

// loadTuning reads the tuning file at path, or returns the built-in table
// when path is empty.
func loadTuning(path string) (*config.Tuning, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadTuning(path)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.musclemap/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".musclemap", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
