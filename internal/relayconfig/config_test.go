package relayconfig

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var stderr bytes.Buffer
	cfg, err := Parse([]string{"--hosts", "/etc/dnsrelay/hosts"}, &stderr)
	require.NoError(t, err)
	require.Equal(t, "/etc/dnsrelay/hosts", cfg.HostsPath)
	require.Equal(t, DefaultUpstream, cfg.Upstream.IP.String())
	require.Equal(t, 53, cfg.Upstream.Port)
}

func TestParseRequiresHosts(t *testing.T) {
	var stderr bytes.Buffer
	_, err := Parse([]string{}, &stderr)
	require.ErrorIs(t, err, ErrHostsRequired)
}

func TestParseCustomUpstream(t *testing.T) {
	var stderr bytes.Buffer
	cfg, err := Parse([]string{"--hosts", "h", "--upstream", "1.1.1.1"}, &stderr)
	require.NoError(t, err)
	require.Equal(t, "1.1.1.1", cfg.Upstream.IP.String())
}

func TestParseClampsOutOfRangeLogMask(t *testing.T) {
	var stderr bytes.Buffer
	cfg, err := Parse([]string{"--hosts", "h", "--log-mask", "255"}, &stderr)
	require.NoError(t, err)
	require.Equal(t, 15, cfg.LogMask)
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	_, err := Parse([]string{"--bogus"}, &stderr)
	require.Error(t, err)
}

func TestSlogLevelMapping(t *testing.T) {
	cases := []struct {
		mask int
		want slog.Level
	}{
		{LogMaskDebug, slog.LevelDebug},
		{LogMaskInfo, slog.LevelInfo},
		{LogMaskError, slog.LevelError},
		{LogMaskFatal, slog.LevelError},
		{0, slog.LevelInfo},
		{LogMaskDebug | LogMaskError, slog.LevelDebug},
	}
	for _, tc := range cases {
		cfg := Config{LogMask: tc.mask}
		require.Equal(t, tc.want, cfg.SlogLevel())
	}
}

func TestOpenLogDefaultsToStderr(t *testing.T) {
	cfg := Config{}
	f, err := cfg.OpenLog()
	require.NoError(t, err)
	require.Equal(t, "/dev/stderr", f.Name())
}
