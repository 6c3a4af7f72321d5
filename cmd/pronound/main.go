// Command pronound answers pronoun queries over TCP. A client sends an
// account name or numeric user ID as a single line and receives the
// first line of that account's preference file (~/.pronouns by default),
// a configured default, or "user not found".
//
// pronound must be started as root so it can bind its registered port
// (731); it switches to an unprivileged account as soon as the socket is
// bound. The recommended deployment is in the foreground under a service
// manager. Daemon mode (-d, or "daemonise true" in the config) only
// redirects logging to syslog; detaching is left to the supervisor.
//
// SIGHUP reloads the config file. SIGINT and SIGTERM shut the server
// down.
package main

import (
	"context"
	"fmt"
	"log"
	"log/syslog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/pronound/pronound/internal/config"
	"github.com/pronound/pronound/internal/privdrop"
	"github.com/pronound/pronound/internal/server"
)

// Flags.
var (
	daemonise  = pflag.BoolP("daemonise", "d", false, "Run in daemon mode: log to syslog instead of stderr.")
	configPath = pflag.StringP("config", "C", "", "Config file to use. (default "+config.DefaultPath+")")
)

func main() {
	pflag.Parse()

	if !privdrop.IsRoot() {
		fmt.Fprintln(os.Stderr, "pronound must be run as root")
		os.Exit(1)
	}

	path := config.Path(*configPath)
	cfg, err := config.Load(path, config.Default())
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	daemonMode := false
	enterDaemonMode := func() {
		if daemonMode {
			return
		}
		w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "pronound")
		if err != nil {
			logger.Printf("Error connecting to syslog, continuing on stderr: %v", err)
			return
		}
		logger.SetOutput(w)
		logger.SetFlags(0)
		daemonMode = true
	}
	if cfg.Daemonise || *daemonise {
		enterDaemonMode()
	}

	srv := server.New(cfg, path, &server.Options{
		Logger: logger,
		OnReload: func(cfg config.Config) {
			if cfg.Daemonise {
				enterDaemonMode()
			}
		},
	})

	if err := srv.Listen(); err != nil {
		logger.Fatalf("Error binding port %d: %v", cfg.Port, err)
	}

	// Bound. Root is no longer needed.
	if err := privdrop.Drop(cfg.User); err != nil {
		logger.Fatalf("Error dropping privileges: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigs {
			if sig == syscall.SIGHUP {
				srv.Reload()
				continue
			}
			cancel()
			return
		}
	}()

	logger.Printf("Listening on %v as %v", srv.Addr(), cfg.User)
	if err := srv.Serve(ctx); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
