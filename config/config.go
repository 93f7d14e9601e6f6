package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("BAZAAR_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("BAZAAR_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("BAZAAR_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/bazaar"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("BAZAAR_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetBackendBaseURL returns the base URL of the upstream marketplace backend
// used by the referral proxy endpoints.
func GetBackendBaseURL() string {
	base := os.Getenv("BAZAAR_BACKEND_URL")
	if base == "" {
		base = "http://127.0.0.1:8081"
	}
	return strings.TrimSuffix(base, "/")
}

// GetRedisAddr returns the redis address used for rate limiting. Empty means
// the in-memory fallback is used instead.
func GetRedisAddr() string {
	return os.Getenv("BAZAAR_REDIS_ADDR")
}
