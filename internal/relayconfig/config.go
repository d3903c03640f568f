// Package relayconfig implements the CLI/flag-parsing and bootstrap
// config collaborator the core relay treats as an external dependency
// (spec §1 "Out of scope... CLI/flag parsing and config bootstrap",
// §4.F/§6 "CLI surface"). It is deliberately the one place in this
// module that uses the standard library's flag package rather than a
// third-party CLI framework: the relay's entire command surface is five
// flags with no subcommands, nesting, or shell completion needs, which
// is exactly flag's target shape (see DESIGN.md).
package relayconfig

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/dnsrelay/relay/internal/helpers"
)

// DefaultUpstream is the upstream resolver address used when --upstream
// is not given (spec §6 "--upstream <addr>: ... default 10.3.9.4").
const DefaultUpstream = "10.3.9.4"

// ExitCode enumerates the process exit codes spec §6 assigns to the
// outcomes of startup.
type ExitCode int

const (
	ExitOK          ExitCode = 0
	ExitConfigError ExitCode = 1
	ExitBindError   ExitCode = 2
)

// LogMask bits (spec §6 "--log-mask <0..15>: bitmask {1=debug, 2=info,
// 4=error, 8=fatal}").
const (
	LogMaskDebug = 1 << 0
	LogMaskInfo  = 1 << 1
	LogMaskError = 1 << 2
	LogMaskFatal = 1 << 3
)

// Config is the fully parsed, validated bootstrap configuration.
type Config struct {
	Upstream   *net.UDPAddr
	HostsPath  string
	LogPath    string
	LogMask    int
	ServerAddr *net.UDPAddr
}

// ErrHostsRequired is returned by Parse when --hosts is missing (spec §6
// "--hosts <path>: path to hosts file (required)").
var ErrHostsRequired = errors.New("relayconfig: --hosts is required")

// Parse parses args (typically os.Args[1:]) into a Config. It returns
// ErrHostsRequired, a flag-parsing error, or an address-resolution error
// on failure — all of which map to ExitConfigError at the call site.
func Parse(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("dnsrelay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	upstream := fs.String("upstream", DefaultUpstream, "IPv4 address of the upstream resolver")
	hosts := fs.String("hosts", "", "path to hosts file (required)")
	logPath := fs.String("log", "", "log output path; stderr if absent")
	logMask := fs.Int("log-mask", LogMaskInfo|LogMaskError|LogMaskFatal, "bitmask: 1=debug 2=info 4=error 8=fatal")
	listen := fs.String("listen", "0.0.0.0:53", "address the relay's server endpoint binds to")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *hosts == "" {
		return Config{}, ErrHostsRequired
	}

	upstreamAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(*upstream, "53"))
	if err != nil {
		return Config{}, fmt.Errorf("resolve upstream %q: %w", *upstream, err)
	}
	serverAddr, err := net.ResolveUDPAddr("udp", *listen)
	if err != nil {
		return Config{}, fmt.Errorf("resolve listen address %q: %w", *listen, err)
	}

	return Config{
		Upstream:   upstreamAddr,
		HostsPath:  *hosts,
		LogPath:    *logPath,
		LogMask:    helpers.ClampInt(*logMask, 0, 15),
		ServerAddr: serverAddr,
	}, nil
}

// OpenLog opens c.LogPath for append if set, returning os.Stderr
// otherwise. The caller is responsible for closing the returned file
// when it is not os.Stderr.
func (c Config) OpenLog() (*os.File, error) {
	if c.LogPath == "" {
		return os.Stderr, nil
	}
	f, err := os.OpenFile(c.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", c.LogPath, err)
	}
	return f, nil
}

// SlogLevel maps the §6 log-mask bitmask onto the nearest slog.Level:
// the mask is finer-grained than slog's four levels, so the lowest set
// bit among {debug, info, error} determines the threshold, and
// LogMaskFatal alone (with nothing finer set) maps to LevelError since
// slog has no level more severe than Error. A mask of 0 maps to LevelInfo.
func (c Config) SlogLevel() slog.Level {
	switch {
	case c.LogMask&LogMaskDebug != 0:
		return slog.LevelDebug
	case c.LogMask&LogMaskInfo != 0:
		return slog.LevelInfo
	case c.LogMask&LogMaskError != 0, c.LogMask&LogMaskFatal != 0:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
