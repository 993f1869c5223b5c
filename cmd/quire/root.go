package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/platform"
)

var (
	verbose    bool
	configPath string
	dataPath   string
	backend    string
	storeKey   string
	assumeYes  bool

	cfg       platform.Config
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quire",
	Short: "A small notes editor with a safe editing session",
	Long: `Quire keeps a list of notes (title, content, timestamps) as a single
JSON blob on disk or in SQLite. Unsaved changes are never lost without
confirmation, and every mutation is persisted immediately.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if path != "" {
			if cfg, err = platform.LoadConfig(path); err != nil {
				return err
			}
		}

		logger, closer, err := newLogger(cfg.Log, verbose, os.Stderr)
		if err != nil {
			return err
		}
		logCloser = closer
		slog.SetDefault(logger)
		slog.Debug("configuration loaded", "config", path, "backend", cfg.Backend)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&configPath, "config", "", "Path to quire.yaml (default: searched upwards from the working directory)")
	flags.StringVar(&dataPath, "path", "", "Data directory (default: .quire of the project root, or the user data dir)")
	flags.StringVar(&backend, "backend", "", "Storage backend: fs, sqlite or memory")
	flags.StringVar(&storeKey, "key", "", "Store key holding the notes")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")
}

// resolveConfigPath returns the explicit --config, else quire.yaml in the
// enclosing project root, else "".
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := quire.FindRoot(wd)
	if err != nil {
		return "", nil
	}
	return filepath.Join(root, platform.ConfigFile), nil
}

// resolveDataPath applies precedence flag > config file > discovery.
// Binaries built by `go run` are redirected into a temporary sandbox.
func resolveDataPath() (string, error) {
	path, err := lookupDataPath()
	if err != nil {
		return "", err
	}
	if platform.IsDevRun() {
		sandboxed := platform.SandboxPath(path)
		if sandboxed != path {
			slog.Warn("development run, using sandbox data directory", "requested", path, "path", sandboxed)
		}
		return sandboxed, nil
	}
	return path, nil
}

func lookupDataPath() (string, error) {
	if dataPath != "" {
		return dataPath, nil
	}
	if cfg.Path != "" {
		return cfg.Path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return quire.ResolveDataDir(wd)
}

// sessionOptions merges config file settings with flags, flags last.
func sessionOptions(extra ...quire.Option) []quire.Option {
	opts := cfg.Options()
	opts = append(opts, quire.WithLogger(slog.Default()))
	if backend != "" {
		opts = append(opts, quire.WithBackend(backend))
	}
	if storeKey != "" {
		opts = append(opts, quire.WithKey(storeKey))
	}
	return append(opts, extra...)
}

// openApp starts a session for a one-shot command. Background workers are
// left to the interactive shell.
func openApp(ctx context.Context, cmd *cobra.Command) (*quire.App, error) {
	path, err := resolveDataPath()
	if err != nil {
		return nil, err
	}

	confirmer := newTerminalConfirmer(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), assumeYes)
	opts := sessionOptions(
		quire.WithConfirmer(confirmer),
		quire.WithAutosave(0),
		quire.WithWatch(false),
	)

	app, err := quire.New(ctx, path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes at %s: %w", path, err)
	}
	return app, nil
}
