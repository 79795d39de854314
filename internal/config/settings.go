package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// Settings holds the runtime configuration resolved from the environment.
// Constants above define the application's fixed vocabulary; Settings define
// the per-installation knobs.
type Settings struct {
	// BackendMode selects the source of truth: BackendModeLocal (embedded
	// SQLite database) or BackendModeWeb (hosted JSON API).
	BackendMode string

	// DBPath is the SQLite file path used in local mode.
	DBPath string

	// RemoteURL, RemoteUser and RemotePass configure the hosted backend in
	// web mode. The password is resolved from the environment first and the
	// OS keyring second, so it never has to live in shell history.
	RemoteURL  string
	RemoteUser string
	RemotePass string

	// Port is the local HTTP port for the snapshot/feed server.
	Port string

	// Language selects the locale for generated labels (ISO 639-1).
	Language string

	// ReminderTrigger is an ISO8601 duration for feed alarms (e.g. "-P1D").
	// Empty disables alarms.
	ReminderTrigger string

	// GroupUnit is the default time unit for the interaction view
	// (day, week, month or year).
	GroupUnit string
}

// LoadSettings reads the environment and fills in defaults.
func LoadSettings() Settings {
	s := Settings{
		BackendMode:     envOrDefault(EnvBackendMode, BackendModeLocal),
		DBPath:          os.Getenv(EnvDBPath),
		RemoteURL:       os.Getenv(EnvRemoteURL),
		RemoteUser:      os.Getenv(EnvRemoteUser),
		RemotePass:      os.Getenv(EnvRemotePass),
		Port:            envOrDefault(EnvServerPort, DefaultPort),
		Language:        envOrDefault(EnvLanguage, DefaultLanguage),
		ReminderTrigger: os.Getenv(EnvReminder),
		GroupUnit:       envOrDefault(EnvGroupUnit, DefaultGroupUnit),
	}

	if s.DBPath == "" {
		s.DBPath = defaultDBPath()
	}

	// Fall back to the OS keyring when the password is not in the environment.
	if s.RemotePass == "" && s.RemoteUser != "" {
		pwd, err := keyring.Get(KeyringService, s.RemoteUser)
		if err != nil {
			slog.Debug(MsgPassFail,
				LogKeyComponent, CompMain,
				LogKeyUser, s.RemoteUser,
				LogKeyError, err,
			)
		} else {
			s.RemotePass = pwd
		}
	}

	return s
}

// defaultDBPath places the database in the user cache directory, falling back
// to the working directory when the cache dir cannot be determined.
func defaultDBPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return DefaultDBName
	}

	appDir := filepath.Join(cacheDir, AppID)
	if err := os.MkdirAll(appDir, DirPermUserRWX); err != nil {
		return DefaultDBName
	}

	return filepath.Join(appDir, DefaultDBName)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
