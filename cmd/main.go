package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/brettbedarf/dirtree/commands"
	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/brettbedarf/dirtree/server"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		scriptPath string
		mnt        string
		httpAddr   string
		verbose    int
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&scriptPath, "script", "",
		"Path to a command script (text, YAML or JSON); - reads commands from stdin. Default runs the built-in demo script.")
	flag.StringVar(&scriptPath, "s", "", "--script (shorthand)")
	flag.StringVar(&mnt, "mount", "", "Mount a read-only view of the tree here after the script runs")
	flag.StringVar(&mnt, "m", "", "--mount (shorthand)")
	flag.StringVar(&httpAddr, "http", "", "Serve the HTTP API on this address after the script runs, e.g. :8080")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the mount point first if needed. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.Parse()

	if mnt == "" {
		mnt = flag.Arg(0)
	}

	// Load config; explicit flags win over the file
	cfg := config.NewDefaultConfig()
	var cfgErr error
	if configPath != "" {
		var fileCfg *config.Config
		if fileCfg, cfgErr = config.NewConfigFromFile(configPath); cfgErr == nil {
			cfg = fileCfg
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose", "v":
			cfg.LogLvl = config.VerboseToLogLevel(verbose)
		case "http":
			cfg.HTTPAddr = httpAddr
		}
	})

	// Initialize logger
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	if cfgErr != nil {
		logger.Fatal().Err(cfgErr).Str("config", configPath).Msg("Failed to load config file")
	}
	logger.Debug().
		Str("config", configPath).
		Str("script", scriptPath).
		Str("mnt", mnt).
		Str("http", cfg.HTTPAddr).
		Msg("dirtree initializing")

	steps, err := loadSteps(scriptPath)
	if err != nil {
		logger.Fatal().Err(err).Str("script", scriptPath).Msg("Failed to load script")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	d := server.New(cfg)
	runner := commands.NewRunner(d, os.Stdout, cfg.ContinueOnError)
	res, err := runner.Run(ctx, steps)
	logger.Info().
		Str("run", runner.RunID()).
		Int("executed", res.Executed).
		Int("failed", res.Failed).
		Msg("Script finished")
	if err != nil {
		logger.Error().Err(err).Msg("Script aborted")
		os.Exit(1)
	}

	if mnt == "" && cfg.HTTPAddr == "" {
		return
	}

	// Serve
	var httpErrs, mountErrs <-chan error
	if cfg.HTTPAddr != "" {
		httpErrs = d.ListenHTTP(cfg.HTTPAddr)
	}
	if mnt != "" {
		// Try unmount if requested
		if umount {
			// we ignore error here if not already mounted
			exec.Command("fusermount", "-u", mnt).Run() // nolint:errcheck
		}
		mountErrs = d.ServeAsync(mnt)
	}

	// Wait for termination signal
	failed := false
wait:
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Received signal, shutting down")
			break wait
		case err := <-httpErrs:
			if err != nil {
				logger.Error().Err(err).Msg("HTTP API failed, shutting down")
				failed = true
			}
			break wait
		case err := <-mountErrs:
			if err != nil {
				logger.Error().Err(err).Str("mountpoint", mnt).Msg("Failed to mount filesystem")
				failed = true
				break wait
			}
			logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")
			mountErrs = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down cleanly")
		failed = true
	} else {
		logger.Info().Msg("Shut down successfully")
	}
	if failed {
		os.Exit(1)
	}
}

// loadSteps returns the steps for path: the built-in script when empty,
// stdin for "-", otherwise the named file
func loadSteps(path string) ([]commands.Step, error) {
	switch path {
	case "":
		return commands.ParseLines(commands.DefaultScript), nil
	case "-":
		lines, err := commands.ReadScript(os.Stdin)
		if err != nil {
			return nil, err
		}
		return commands.ParseLines(lines), nil
	default:
		return commands.LoadScriptFile(path)
	}
}
