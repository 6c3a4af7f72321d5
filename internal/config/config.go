// Package config loads and reloads the pronound configuration file.
//
// The file is line oriented. Each non-empty, non-comment line holds a key,
// a single space, and the rest of the line as the value:
//
//	daemonise false
//	defaults not specified
//	file .pronouns
//	port 731
//	user _pronound
//
// Unrecognized keys are ignored so old daemons can read new files.
package config

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultPath is the config file location used when neither the
	// environment variable nor a flag names one.
	DefaultPath = "/etc/pronound.conf"

	// EnvVar names an environment variable overriding the config file
	// location.
	EnvVar = "PRONOUND_CONFIG"

	// DefaultPort is the TCP port registered for this service.
	DefaultPort = 731
)

// Config holds the daemon configuration.
type Config struct {
	// Daemonise reports whether the daemon runs detached under a service
	// manager, with logging sent to syslog instead of stderr.
	Daemonise bool

	// Defaults is the response returned for accounts without a preference
	// file. Always ends in a newline.
	Defaults string

	// File is the preference file name, relative to each account's home
	// directory.
	File string

	// Port is the TCP port to listen on.
	Port int

	// User is the unprivileged account to switch to after binding.
	User string
}

// Default returns a Config holding the built-in defaults.
func Default() Config {
	return Config{
		Defaults: "not specified\n",
		File:     ".pronouns",
		Port:     DefaultPort,
		User:     "_pronound",
	}
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// Path returns the config file location. The environment variable takes
// precedence over the explicit path, which takes precedence over the
// built-in default. The same order applies at startup and on reload.
func Path(explicit string) string {
	if p := os.Getenv(EnvVar); p != "" {
		return p
	}
	if explicit != "" {
		return explicit
	}
	return DefaultPath
}

// Load reads the file at path and returns base with every recognized key
// overwritten. Keys absent from the file keep their values from base. On
// any error base is returned unchanged, so a failed reload never clobbers
// a running configuration.
func Load(path string, base Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer f.Close()
	cfg, err := Parse(f, base)
	if err != nil {
		return base, fmt.Errorf("%v: %v", path, err)
	}
	return cfg, nil
}

// Parse reads config lines from r and applies them on top of base.
func Parse(r io.Reader, base Config) (Config, error) {
	cfg := base
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "daemonise":
			cfg.Daemonise = value == "true" || value == "1"
		case "defaults":
			cfg.Defaults = value + "\n"
		case "file":
			cfg.File = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil || port < 1 || port > 65535 {
				return base, fmt.Errorf("invalid port %q", value)
			}
			cfg.Port = port
		case "user":
			cfg.User = value
		}
	}
	if err := sc.Err(); err != nil {
		return base, err
	}
	return cfg, nil
}
