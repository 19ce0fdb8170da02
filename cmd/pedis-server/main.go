// Command pedis-server runs a pedis key/value server on a TCP port,
// loading persisted state from its dump file at startup and writing it
// back out on a clean shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ehrlich-b/pedis/internal/config"
	"github.com/ehrlich-b/pedis/internal/constants"
	"github.com/ehrlich-b/pedis/internal/logging"
	"github.com/ehrlich-b/pedis/internal/snapshot"

	"github.com/ehrlich-b/pedis"
)

var (
	flagHost     string
	flagPort     int
	flagDBCount  int
	flagConfig   string
	flagDump     string
	flagDir      string
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pedis-server",
		Short: "A minimal Redis-compatible in-memory key/value server",
		RunE:  run,
	}

	rootCmd.Flags().StringVar(&flagHost, "host", "", "bind address (default 127.0.0.1)")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "listen port (default 6379)")
	rootCmd.Flags().IntVar(&flagDBCount, "dbnum", 0, "number of selectable databases (default 16)")
	rootCmd.Flags().StringVar(&flagConfig, "conf", "", "path to a pedis.conf-style config file")
	rootCmd.Flags().StringVar(&flagDump, "dump", "", "dump file name, relative to --dir unless absolute")
	rootCmd.Flags().StringVar(&flagDir, "dir", "", "working directory for the dump file")
	rootCmd.Flags().StringVar(&flagLogLevel, "loglevel", "", "debug, info, warning, or critical")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pedis-server: %v\n", err)
		os.Exit(1)
	}
}

// run loads the config file, overlays any flags the caller set explicitly,
// and runs the server until SIGINT/SIGTERM, attempting one final
// synchronous save before exiting.
func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("dir") {
		cfg.Dir = flagDir
	}
	if cmd.Flags().Changed("loglevel") {
		cfg.LogLevel = flagLogLevel
	}

	dumpFile := flagDump
	if dumpFile == "" {
		dumpFile = constants.DefaultDumpFile
	}
	dumpPath := dumpFile
	if !filepath.IsAbs(dumpPath) {
		dumpPath = snapshot.ResolvePath(cfg.Dir, dumpFile)
	}

	host := flagHost
	if host == "" {
		host = constants.DefaultHost
	}
	dbCount := flagDBCount
	if dbCount == 0 {
		dbCount = constants.DefaultDBCount
	}

	logger := logging.NewLogger(&logging.Config{Level: logging.ParseLevel(cfg.LogLevel)})
	logging.SetDefault(logger)

	srv, err := pedis.NewServer(pedis.Config{
		Host:     host,
		Port:     cfg.Port,
		DBCount:  dbCount,
		DumpPath: dumpPath,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer srv.Close()

	logger.Infof("pedis listening on %s:%d (dump=%s, dbnum=%d)", host, cfg.Port, dumpPath, dbCount)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if runErr != nil {
		logger.Errorf("reactor exited: %v", runErr)
	}

	if ctx.Err() != nil {
		logger.Infof("shutting down, saving %s", dumpPath)
		if err := srv.SaveForShutdown(); err != nil {
			logger.Errorf("final save failed: %v", err)
			return err
		}
	}

	if srv.ExitCode() != 0 {
		os.Exit(srv.ExitCode())
	}
	return nil
}
