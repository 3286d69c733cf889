package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/opd-ai/peerchat/limits"
	"github.com/opd-ai/peerchat/transport"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnsupportedFormat is returned by Load for a file extension it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds the settings of one chat instance.
type Config struct {
	// ListenHost is the local address the listener binds. Empty or 0.0.0.0
	// means every IPv4 interface.
	ListenHost string `toml:"listen_host" yaml:"listen_host"`
	// Port is the listening port. 0 picks an ephemeral port.
	Port int `toml:"port" yaml:"port"`
	// Capacity bounds the number of simultaneous peer connections.
	Capacity int `toml:"capacity" yaml:"capacity"`
	// BufferSize is the receive buffer handed to one raw-mode read.
	BufferSize int `toml:"buffer_size" yaml:"buffer_size"`
	// Framing selects the wire codec: "raw" or "length-prefixed".
	Framing string `toml:"framing" yaml:"framing"`
	// ReuseAddr sets SO_REUSEADDR on the listener.
	ReuseAddr bool `toml:"reuse_addr" yaml:"reuse_addr"`

	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	LogFile   string `toml:"log_file" yaml:"log_file"`

	// MetricsAddr, when set, serves /health and /metrics on that address.
	MetricsAddr string `toml:"metrics_addr" yaml:"metrics_addr"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		ListenHost: "0.0.0.0",
		Port:       0,
		Capacity:   limits.DefaultCapacity,
		BufferSize: limits.ReceiveBufferSize,
		Framing:    transport.FramingRaw,
		ReuseAddr:  true,
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
// Keys absent from the file keep their default values. ${VAR} references are
// expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.Decode(string(expanded), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config toml: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config toml: unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(expanded))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return cfg, nil
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if c.Port != 0 {
		if err := limits.ValidatePort(c.Port); err != nil {
			return fmt.Errorf("%w: port: %w", ErrInvalidConfig, err)
		}
	}
	if c.ListenHost != "" {
		if ip := net.ParseIP(c.ListenHost); ip == nil || ip.To4() == nil {
			return fmt.Errorf("%w: listen_host %q: %w", ErrInvalidConfig, c.ListenHost, transport.ErrInvalidAddress)
		}
	}
	if err := limits.ValidateCapacity(c.Capacity); err != nil {
		return fmt.Errorf("%w: capacity: %w", ErrInvalidConfig, err)
	}
	if c.BufferSize <= 0 || c.BufferSize > limits.MaxFrameSize {
		return fmt.Errorf("%w: buffer_size %d must be between 1 and %d", ErrInvalidConfig, c.BufferSize, limits.MaxFrameSize)
	}
	if _, err := transport.NewCodec(c.Framing); err != nil {
		return fmt.Errorf("%w: framing: %w", ErrInvalidConfig, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("%w: metrics_addr: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
