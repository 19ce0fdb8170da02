// Package config parses pedis's flat configuration file format, per
// spec.md §6: "key value" per line, "#" or blank lines ignored.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ehrlich-b/pedis/internal/constants"
)

// Config holds the recognised configuration keys from spec.md §6. Dir is
// reserved (accepted, stored, not yet load-bearing anywhere beyond
// resolving the dump file path relative to it).
type Config struct {
	Port     int
	LogLevel string
	LogFile  string
	Dir      string
}

// Default returns the configuration in effect with no config file
// present: the defaults spec.md §6 and internal/constants name.
func Default() Config {
	return Config{
		Port:     constants.DefaultPort,
		LogLevel: "info",
		LogFile:  "stdout",
	}
}

// Load resolves the config file path (explicit path, else the
// PEDIS_CONF environment variable, else constants.DefaultConfigPath) and
// parses it over Default(). A missing file is not an error — the process
// simply runs with defaults, matching the original's no-config startup.
func Load(path string) (Config, error) {
	if path == "" {
		if envPath := os.Getenv(constants.ConfigPathEnvVar); envPath != "" {
			path = envPath
		} else {
			path = constants.DefaultConfigPath
			if exe, err := os.Executable(); err == nil {
				path = filepath.Join(filepath.Dir(exe), constants.DefaultConfigPath)
			}
		}
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads the "key value" grammar from r over Default().
//
// This is a deliberately hand-rolled bufio.Scanner parser rather than a
// pack library like viper or a properties format — see DESIGN.md for why
// this specific flat grammar doesn't fit either.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			return Config{}, fmt.Errorf("config: line %d: expected \"key value\", got %q", lineNo, line)
		}
		key, value := strings.ToLower(fields[0]), strings.TrimSpace(fields[1])

		switch key {
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil || port < 0 || port > 65535 {
				return Config{}, fmt.Errorf("config: line %d: invalid port %q", lineNo, value)
			}
			cfg.Port = port
		case "loglevel":
			switch strings.ToLower(value) {
			case "debug", "info", "warning", "critical":
				cfg.LogLevel = strings.ToLower(value)
			default:
				return Config{}, fmt.Errorf("config: line %d: invalid loglevel %q", lineNo, value)
			}
		case "logfile":
			cfg.LogFile = value
		case "dir":
			cfg.Dir = value
		default:
			return Config{}, fmt.Errorf("config: line %d: unrecognised key %q", lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("config: scan: %w", err)
	}
	return cfg, nil
}
