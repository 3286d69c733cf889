package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/opd-ai/peerchat/config"
	"github.com/opd-ai/peerchat/limits"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func resetLogging(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})
}

func TestParseCLIFlags(t *testing.T) {
	var stderr bytes.Buffer
	cli, _, err := parseCLIFlags([]string{"-capacity", "3", "-framing", "length-prefixed", "-log-level", "debug", "4322"}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, 3, cli.capacity)
	assert.Equal(t, "length-prefixed", cli.framing)
	assert.Equal(t, "debug", cli.logLevel)
	assert.True(t, cli.portSet)
	assert.Equal(t, 4322, cli.port)
}

func TestParseCLIFlagsRejectsNonNumericPort(t *testing.T) {
	_, _, err := parseCLIFlags([]string{"abc"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, limits.ErrInvalidPort)
}

func TestBuildConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peerchat.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = 5000\ncapacity = 4\nlog_level = \"info\"\n"), 0o644))

	cfg, err := buildConfig(&CLIConfig{configFile: path, logLevel: "error"})
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 4, cfg.Capacity)
	assert.Equal(t, "error", cfg.LogLevel)

	cfg, err = buildConfig(&CLIConfig{configFile: path, capacity: 2, port: 6000, portSet: true})
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, 2, cfg.Capacity)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidateCLIConfig(t *testing.T) {
	tests := []struct {
		name        string
		cli         *CLIConfig
		mutate      func(*config.Config)
		wantErr     bool
		errContains string
	}{
		{
			name: "positional port",
			cli:  &CLIConfig{portSet: true, port: 4322},
			mutate: func(c *config.Config) {
				c.Port = 4322
			},
		},
		{
			name: "port from config file",
			cli:  &CLIConfig{},
			mutate: func(c *config.Config) {
				c.Port = 4322
			},
		},
		{
			name:        "missing port",
			cli:         &CLIConfig{},
			mutate:      func(c *config.Config) {},
			wantErr:     true,
			errContains: "missing listening port",
		},
		{
			name: "port zero",
			cli:  &CLIConfig{portSet: true},
			mutate: func(c *config.Config) {
				c.Port = 0
			},
			wantErr:     true,
			errContains: "invalid port",
		},
		{
			name: "port over 65535",
			cli:  &CLIConfig{portSet: true, port: 70000},
			mutate: func(c *config.Config) {
				c.Port = 70000
			},
			wantErr:     true,
			errContains: "invalid port",
		},
		{
			name: "bad framing",
			cli:  &CLIConfig{portSet: true, port: 4322},
			mutate: func(c *config.Config) {
				c.Port = 4322
				c.Framing = "lines"
			},
			wantErr:     true,
			errContains: "framing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := validateCLIConfig(tt.cli, cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestRunMissingPortPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "peerchat [options] <port>")
	assert.Empty(t, stdout.String())
}

func TestRunHelp(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-help"}, strings.NewReader(""), &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), "-metrics-addr")
}

func TestRunInvalidPort(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), []string{"99999"}, strings.NewReader(""), &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), "invalid port")
}

func TestRunExitCommand(t *testing.T) {
	resetLogging(t)
	logFile := filepath.Join(t.TempDir(), "peerchat.log")
	port := freePort(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-log-file", logFile, "-log-level", "info", strconv.Itoa(port)},
		strings.NewReader("myport\nexit\n"), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Listening port of this app: "+strconv.Itoa(port))
	assert.Contains(t, stdout.String(), "DONE, GOODBYE!!!")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TCP listener created successfully")
}

func TestRunListenFailure(t *testing.T) {
	resetLogging(t)
	l, err := net.Listen("tcp4", "0.0.0.0:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	var stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-log-file", filepath.Join(t.TempDir(), "peerchat.log"), strconv.Itoa(port)},
		strings.NewReader(""), &bytes.Buffer{}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Listen failed")
}
