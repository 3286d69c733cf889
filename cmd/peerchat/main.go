package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/opd-ai/peerchat/chat"
	"github.com/opd-ai/peerchat/config"
	"github.com/opd-ai/peerchat/limits"
	"github.com/sirupsen/logrus"
)

// errUsage reports a command line that cannot be run; usage has been printed.
var errUsage = errors.New("usage")

// CLIConfig holds the parsed command line. Zero-valued flags leave the
// config file or default value in place.
type CLIConfig struct {
	configFile  string
	logLevel    string
	logFormat   string
	logFile     string
	capacity    int
	framing     string
	metricsAddr string
	help        bool

	port    int
	portSet bool
}

// parseCLIFlags parses args (without the program name).
func parseCLIFlags(args []string, stderr io.Writer) (*CLIConfig, *flag.FlagSet, error) {
	cli := &CLIConfig{}
	fs := flag.NewFlagSet("peerchat", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cli.configFile, "config", "", "Config file (.toml, .yaml or .yml)")

	// Logging configuration
	fs.StringVar(&cli.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cli.logFormat, "log-format", "", "Log format (text, json)")
	fs.StringVar(&cli.logFile, "log-file", "", "Log file path (default: stderr)")

	// Peer configuration
	fs.IntVar(&cli.capacity, "capacity", 0, fmt.Sprintf("Maximum simultaneous connections (default %d)", limits.DefaultCapacity))
	fs.StringVar(&cli.framing, "framing", "", "Wire framing (raw, length-prefixed)")
	fs.StringVar(&cli.metricsAddr, "metrics-addr", "", "Serve /health and /metrics on this address")

	fs.BoolVar(&cli.help, "help", false, "Show help message")

	fs.Usage = func() { printUsage(fs) }
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}

	if fs.NArg() > 0 {
		port, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return nil, fs, fmt.Errorf("%w: %q is not a port number", limits.ErrInvalidPort, fs.Arg(0))
		}
		cli.port, cli.portSet = port, true
	}
	return cli, fs, nil
}

// printUsage prints the usage information.
func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "peerchat: peer-to-peer TCP chat")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  peerchat [options] <port>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  peerchat 4322")
	fmt.Fprintln(w, "  peerchat -config peerchat.toml -log-level debug 4322")
}

// buildConfig layers defaults, the config file, flags and the positional port.
func buildConfig(cli *CLIConfig) (*config.Config, error) {
	cfg := config.Default()
	if cli.configFile != "" {
		loaded, err := config.Load(cli.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cli.logLevel != "" {
		cfg.LogLevel = cli.logLevel
	}
	if cli.logFormat != "" {
		cfg.LogFormat = cli.logFormat
	}
	if cli.logFile != "" {
		cfg.LogFile = cli.logFile
	}
	if cli.capacity != 0 {
		cfg.Capacity = cli.capacity
	}
	if cli.framing != "" {
		cfg.Framing = cli.framing
	}
	if cli.metricsAddr != "" {
		cfg.MetricsAddr = cli.metricsAddr
	}
	if cli.portSet {
		cfg.Port = cli.port
	}
	return cfg, nil
}

// validateCLIConfig checks what the command line must supply on its own.
func validateCLIConfig(cli *CLIConfig, cfg *config.Config) error {
	if !cli.portSet && cfg.Port == 0 {
		return fmt.Errorf("%w: missing listening port", errUsage)
	}
	if err := limits.ValidatePort(cfg.Port); err != nil {
		return err
	}
	return cfg.Validate()
}

// run is main without the process exit, returning the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli, fs, err := parseCLIFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if cli.help {
		printUsage(fs)
		return 0
	}

	cfg, err := buildConfig(cli)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	if err := validateCLIConfig(cli, cfg); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(fs)
			return 1
		}
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	logCloser, err := config.ConfigureLogging(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	node, err := chat.New(cfg, &chat.Options{Input: stdin, Output: stdout})
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	if err := node.Listen(ctx); err != nil {
		fmt.Fprintf(stderr, "Listen failed: %v\n", err)
		return 1
	}

	if err := node.Run(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "run",
			"error":    err.Error(),
		}).Error("Chat node stopped with error")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
