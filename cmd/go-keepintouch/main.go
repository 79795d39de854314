package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-keepintouch/internal/config"
	"github.com/tartampluch/go-keepintouch/internal/engine"
	"github.com/tartampluch/go-keepintouch/internal/feed"
	"github.com/tartampluch/go-keepintouch/internal/i18n"
	"github.com/tartampluch/go-keepintouch/internal/remote"
	"github.com/tartampluch/go-keepintouch/internal/server"
	"github.com/tartampluch/go-keepintouch/internal/store"
	"github.com/tartampluch/go-keepintouch/internal/vcf"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	importPath := flag.String(config.FlagImport, "", config.FlagDescImport)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// Configure structured logging (slog) early to capture startup issues.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// Root context cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, *importPath); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the backend, engine, feed and server together and blocks serving
// until the context is cancelled.
func run(ctx context.Context, importPath string) error {
	settings := config.LoadSettings()

	backend, closer, err := buildBackend(settings)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	if importPath != "" {
		if err := importVCards(ctx, backend, importPath); err != nil {
			return err
		}
	}

	translator := i18n.New(settings.Language)

	eng := engine.NewEngine(backend)
	eng.Labels = translator.Labels()
	eng.SetGroupUnit(engine.ParseTimeUnit(settings.GroupUnit))

	if err := eng.Load(ctx); err != nil {
		return err
	}

	generator := &feed.Generator{
		Clock:         engine.RealClock{},
		FormatSummary: translator.FeedSummary,
	}

	srv := server.NewFeedServer(settings.Port)
	if err := publish(eng, generator, srv, settings.ReminderTrigger); err != nil {
		return err
	}

	return srv.Start(ctx)
}

// buildBackend selects the source of truth from the configured mode.
func buildBackend(settings config.Settings) (engine.Backend, io.Closer, error) {
	switch settings.BackendMode {
	case config.BackendModeLocal:
		db, err := store.OpenDB(settings.DBPath)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewStore(db)
		return s, s, nil

	case config.BackendModeWeb:
		if settings.RemoteURL == "" {
			return nil, nil, errors.New(config.ErrRemoteURLEmpty)
		}
		client, err := remote.NewClient(settings.RemoteURL, settings.RemoteUser, settings.RemotePass)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	default:
		return nil, nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, settings.BackendMode)
	}
}

// importVCards feeds a local .vcf export into the backend before serving.
func importVCards(ctx context.Context, backend engine.Backend, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrImportOpen, err)
	}
	defer func() { _ = f.Close() }()

	_, _, err = vcf.Import(ctx, backend, f)
	return err
}

// publish renders the feed and snapshots from the freshly loaded collections
// and hands them to the server's atomic caches.
func publish(eng *engine.Engine, generator *feed.Generator, srv *server.FeedServer, reminderTrigger string) error {
	groups := eng.GroupedRelationships()

	ics, _, err := generator.Generate(groups, reminderTrigger)
	if err != nil {
		return err
	}
	srv.UpdateCalendar(ics)

	relationshipsJSON, err := json.Marshal(groups)
	if err != nil {
		return err
	}
	interactionsJSON, err := json.Marshal(eng.GroupedInteractions())
	if err != nil {
		return err
	}
	srv.UpdateSnapshots(relationshipsJSON, interactionsJSON)

	return nil
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
