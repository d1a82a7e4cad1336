// Package config reads the process configuration of the command line tool
// from the environment and from an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// The environment variables that the tool reads.
const (
	EnvToolPath      = "AKITAPOWER_TOOL_PATH"
	EnvToolSearchDir = "AKITAPOWER_TOOL_SEARCH_DIR"
	EnvScratchDir    = "AKITAPOWER_SCRATCH_DIR"
	EnvHistoryLimit  = "AKITAPOWER_HISTORY_LIMIT"
	EnvTableDir      = "AKITAPOWER_TABLE_DIR"
	EnvPort          = "AKITAPOWER_PORT"
	EnvRecord        = "AKITAPOWER_RECORD"
	EnvLogLevel      = "AKITAPOWER_LOG_LEVEL"
)

// Config holds the settings of one process.
type Config struct {
	// ToolPath is the memory compiler executable. Empty means searching
	// ToolSearchDir.
	ToolPath      string
	ToolSearchDir string

	// ScratchDir keeps the history of the memory compiler runs. Empty means
	// the temporary directory of the system.
	ScratchDir   string
	HistoryLimit int

	// TableDir holds CSV tables that replace the embedded reference tables.
	TableDir string

	Port int

	// Record is the target of the recorder. Empty disables recording.
	Record string

	LogLevel logrus.Level
}

// Default returns the configuration when nothing is set.
func Default() Config {
	return Config{
		HistoryLimit: 50,
		LogLevel:     logrus.InfoLevel,
	}
}

// Load reads the .env files, if they exist, and then the environment. Values
// already in the environment take precedence over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()

	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	c.ToolPath = get(EnvToolPath)
	c.ToolSearchDir = get(EnvToolSearchDir)
	c.TableDir = get(EnvTableDir)
	c.Record = get(EnvRecord)

	if dir := get(EnvScratchDir); dir != "" {
		c.ScratchDir = filepath.Clean(dir)
	}

	if v := get(EnvHistoryLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return Config{}, fmt.Errorf("%s must be a positive integer, got %q",
				EnvHistoryLimit, v)
		}

		c.HistoryLimit = limit
	}

	if v := get(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return Config{}, fmt.Errorf("%s is not a valid port: %q", EnvPort, v)
		}

		c.Port = port
	}

	if v := get(EnvLogLevel); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}

		c.LogLevel = level
	}

	return c, nil
}

// Apply sets the level of a logger.
func (c Config) Apply(logger *logrus.Logger) {
	logger.SetLevel(c.LogLevel)
}
