package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults for every tunable. Each one can be overridden through the
// environment so deployments don't need a rebuild to change limits.
const (
	defaultPort           = 7878
	defaultMaxUploadBytes = 150 * 1024 * 1024
	defaultMaxJobs        = 500
	defaultEvictBatch     = 50
	defaultKeepTerminal   = 100
	defaultRetention      = time.Hour
	defaultSweepInterval  = 30 * time.Minute
)

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// GetPort returns the HTTP listen port. PORT takes precedence so the server
// works unchanged on platforms that inject it.
func GetPort() int {
	return envInt("PORT", defaultPort)
}

// GetOutputDir returns the directory finished GIFs are written to and served
// from. Defaults to "./output" relative to the executable.
func GetOutputDir() string {
	if dir := os.Getenv("GIFMAKER_OUTPUT_DIR"); dir != "" {
		return dir
	}
	return "./output"
}

// GetDataDir returns the directory for the history database.
func GetDataDir() string {
	if dir := os.Getenv("GIFMAKER_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetHistoryDBPath returns the full path to the conversion history database.
// Path: {DATA_DIR}/history.db
func GetHistoryDBPath() string {
	return filepath.Join(GetDataDir(), "history.db")
}

// GetMaxUploadBytes returns the declared-content-length cap for /convert.
func GetMaxUploadBytes() int64 {
	return int64(envInt("GIFMAKER_MAX_UPLOAD_BYTES", defaultMaxUploadBytes))
}

// GetMaxJobs returns the registry capacity. When the registry is full the
// oldest GetEvictBatch entries are dropped before a new job is admitted.
func GetMaxJobs() int {
	return envInt("GIFMAKER_MAX_JOBS", defaultMaxJobs)
}

// GetEvictBatch returns how many of the oldest registry entries are evicted
// in one go when the capacity cap is hit.
func GetEvictBatch() int {
	return envInt("GIFMAKER_EVICT_BATCH", defaultEvictBatch)
}

// GetKeepTerminal returns how many finished job records survive a sweep.
func GetKeepTerminal() int {
	return envInt("GIFMAKER_KEEP_TERMINAL", defaultKeepTerminal)
}

// GetRetention returns how long finished GIFs are kept on disk.
func GetRetention() time.Duration {
	if v := os.Getenv("GIFMAKER_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultRetention
}

// GetSweepInterval returns how often the retention sweeper runs.
func GetSweepInterval() time.Duration {
	if v := os.Getenv("GIFMAKER_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultSweepInterval
}

// GetPublishBackend returns the optional remote mirror backend for finished
// GIFs: "s3", "gcs" or "sftp". Empty string disables publishing.
func GetPublishBackend() string {
	return os.Getenv("GIFMAKER_PUBLISH_BACKEND")
}

// GetPublishConfig collects the backend credentials and target settings from
// GIFMAKER_PUBLISH_* variables into the flat map the publish package expects.
func GetPublishConfig() map[string]string {
	keys := map[string]string{
		"accessKey":       "GIFMAKER_PUBLISH_ACCESS_KEY",
		"secretKey":       "GIFMAKER_PUBLISH_SECRET_KEY",
		"region":          "GIFMAKER_PUBLISH_REGION",
		"bucket":          "GIFMAKER_PUBLISH_BUCKET",
		"prefix":          "GIFMAKER_PUBLISH_PREFIX",
		"credentialsJSON": "GIFMAKER_PUBLISH_CREDENTIALS_JSON",
		"host":            "GIFMAKER_PUBLISH_HOST",
		"port":            "GIFMAKER_PUBLISH_PORT",
		"user":            "GIFMAKER_PUBLISH_USER",
		"password":        "GIFMAKER_PUBLISH_PASSWORD",
		"privateKey":      "GIFMAKER_PUBLISH_PRIVATE_KEY",
		"remoteDir":       "GIFMAKER_PUBLISH_REMOTE_DIR",
	}
	cfg := make(map[string]string)
	for k, env := range keys {
		if v := os.Getenv(env); v != "" {
			cfg[k] = v
		}
	}
	return cfg
}
