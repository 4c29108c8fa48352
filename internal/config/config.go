// Package config resolves the server configuration from defaults, the TOML
// configuration file and command line flags. The result is a plain value
// that is built once at startup and only read afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults
const (
	DefaultConfigPath  = "config.toml"
	DefaultAddress     = "127.0.0.1:7878"
	DefaultThreads     = 4
	DefaultWWWPath     = "www/"
	DefaultPage404Path = "404.md"
	DefaultReadBuffer  = 2048
	DefaultQueueSize   = 64
	DefaultStylesheet  = "default.scss"
	DefaultMetadata    = "metadata.json"
	DefaultSocksHost   = "site.local"
	DefaultVerbosity   = VerbosityWarn
)

// Verbosity selects which log messages are printed
type Verbosity int

// Verbosity levels, from nothing at all to debug output
const (
	VerbositySilent Verbosity = iota
	VerbosityError
	VerbosityWarn
	VerbosityInfo
	VerbosityDebug
)

// Valid reports whether v is a known level
func (v Verbosity) Valid() bool {
	return v >= VerbositySilent && v <= VerbosityDebug
}

// Server is the [server] table
type Server struct {
	Address     string `toml:"address"`
	Threads     int    `toml:"threads"`
	WWWPath     string `toml:"www_path"`
	Page404Path string `toml:"err404_path"`
	Title       string `toml:"title"`
	Lang        string `toml:"lang"`
	ReadBuffer  int    `toml:"read_buffer"`
	QueueSize   int    `toml:"queue_size"`
}

// Markdown is the [markdown] table
type Markdown struct {
	Stylesheets []string `toml:"stylesheets"`
	Metadata    string   `toml:"metadata"`
}

// Tunnel is the [tunnel] table. An empty address disables the listener.
type Tunnel struct {
	Address string `toml:"address"`
	XorKey  string `toml:"xor_key"`
}

// Socks is the [socks] table. An empty address disables the gateway.
type Socks struct {
	Address  string `toml:"address"`
	Hostname string `toml:"hostname"`
}

// Config is the resolved server configuration
type Config struct {
	Server   Server   `toml:"server"`
	Markdown Markdown `toml:"markdown"`
	Tunnel   Tunnel   `toml:"tunnel"`
	Socks    Socks    `toml:"socks"`

	// Set from the command line, never from the file
	Verbosity Verbosity `toml:"-"`
	Path      string    `toml:"-"`
}

// Default returns the configuration used when the file leaves a key unset
func Default() Config {
	return Config{
		Server: Server{
			Address:     DefaultAddress,
			Threads:     DefaultThreads,
			WWWPath:     DefaultWWWPath,
			Page404Path: DefaultPage404Path,
			ReadBuffer:  DefaultReadBuffer,
			QueueSize:   DefaultQueueSize,
		},
		Markdown: Markdown{
			Stylesheets: []string{DefaultStylesheet},
			Metadata:    DefaultMetadata,
		},
		Socks: Socks{
			Hostname: DefaultSocksHost,
		},
		Verbosity: DefaultVerbosity,
		Path:      DefaultConfigPath,
	}
}

// Load reads the TOML file at path on top of the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.Path = path

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return Config{}, fmt.Errorf("couldn't load %s: bad syntax: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("couldn't load %s: unknown key %q", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("couldn't load %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would make the server unusable
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is empty")
	}
	if c.Server.Threads < 1 {
		return fmt.Errorf("server.threads must be at least 1, got %d", c.Server.Threads)
	}
	if c.Server.ReadBuffer < 64 {
		return fmt.Errorf("server.read_buffer must be at least 64, got %d", c.Server.ReadBuffer)
	}
	if c.Server.QueueSize < 0 {
		return fmt.Errorf("server.queue_size must not be negative, got %d", c.Server.QueueSize)
	}
	if c.Server.WWWPath == "" {
		return errors.New("server.www_path is empty")
	}
	if c.Socks.Address != "" && c.Socks.Hostname == "" {
		return errors.New("socks.hostname is required when socks.address is set")
	}
	if !c.Verbosity.Valid() {
		return fmt.Errorf("invalid verbosity %d", c.Verbosity)
	}
	return nil
}

// ContentRoot is the www directory. A relative www_path is taken relative
// to the directory holding the configuration file.
func (c *Config) ContentRoot() string {
	if filepath.IsAbs(c.Server.WWWPath) {
		return filepath.Clean(c.Server.WWWPath)
	}
	return filepath.Join(filepath.Dir(c.Path), c.Server.WWWPath)
}
