package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"isoresample/pkg/config"
	"isoresample/pkg/logging"
	"isoresample/pkg/resample"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(status)
}

// run is main without the process globals. getenv is the only way the
// environment is consulted. Flags must precede the positional arguments;
// "--" ends flag parsing so an image path may start with a dash.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("resample", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stdout, resample.Usage)
		flags.PrintDefaults()
	}

	configPath := flags.String("config", getenv("ISORESAMPLE_CONFIG"), "YAML configuration file")
	writeConfig := flags.String("write-config", "", "Write the default configuration to this path and exit")
	dryRun := flags.Bool("dry-run", false, "Print the flirt command line instead of running it")
	preview := flags.Bool("preview", false, "Log the input grid and the predicted resampled grid")
	check := flags.Bool("check", false, "Verify the FSL installation and exit")
	logLevel := flags.String("log-level", "", "Override logging level (debug, info, warn, error)")
	logFormat := flags.String("log-format", "", "Override logging format (text, json)")

	if err := flags.Parse(args); err != nil {
		// Misuse with too few arguments is reported like a missing argument
		if errors.Is(err, flag.ErrHelp) || len(args) < 3 {
			return config.DefaultConfig().Exit.UsageStatus
		}
		return 2
	}

	logger := log.New(stderr, "resample: ", 0)

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			logger.Printf("Failed to write config: %v", err)
			return 1
		}
		fmt.Fprintf(stdout, "Default configuration written to %s\n", *writeConfig)
		return 0
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Printf("Failed to load config: %v", err)
		return 1
	}

	// FSLDIR wins over the config file, as it does for FSL's own scripts
	if dir := getenv("FSLDIR"); dir != "" {
		cfg.FSL.Dir = dir
	}
	if *preview {
		cfg.Preview.Enabled = true
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	if err := cfg.Validate(); err != nil {
		logger.Printf("Invalid configuration: %v", err)
		return 1
	}

	wrapper := resample.NewWrapper(&resample.Params{
		Config: cfg,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logging.New(cfg.Logging.Level, cfg.Logging.Format, stderr),
		DryRun: *dryRun,
	})

	if *check {
		return wrapper.Check()
	}

	return wrapper.Run(ctx, flags.Args())
}
