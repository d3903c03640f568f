// Command dnsrelay boots the DNS relay: parse config, configure
// logging, seed the cache from the hosts file, build the ID/query
// pools, and run the event loop until interrupted (spec §5
// "Lifecycle").
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dnsrelay/relay/internal/cache"
	"github.com/dnsrelay/relay/internal/idpool"
	"github.com/dnsrelay/relay/internal/logging"
	"github.com/dnsrelay/relay/internal/querypool"
	"github.com/dnsrelay/relay/internal/relay"
	"github.com/dnsrelay/relay/internal/relayconfig"
	"github.com/dnsrelay/relay/internal/statusapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := relayconfig.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dnsrelay:", err)
		return int(relayconfig.ExitConfigError)
	}

	logFile, err := cfg.OpenLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dnsrelay:", err)
		return int(relayconfig.ExitConfigError)
	}
	if logFile != os.Stderr {
		defer logFile.Close()
	}

	instanceID := uuid.New().String()
	logger := logging.Configure(logging.Config{
		Level:       cfg.SlogLevel().String(),
		Structured:  true,
		IncludePID:  true,
		ExtraFields: map[string]string{"instance": instanceID},
		Output:      logFile,
	})

	c := cache.New(cache.NewTrie(), logger)
	if err := c.LoadHostsFile(cfg.HostsPath); err != nil {
		logger.Error("failed to load hosts file", "path", cfg.HostsPath, "err", err)
		return int(relayconfig.ExitConfigError)
	}

	ids := idpool.New()
	pool := querypool.New(ids, c, querypool.Config{
		Timeout:    querypool.DefaultTimeout,
		MaxRetries: querypool.DefaultRetries,
	}, logger)

	srv, err := relay.New(cfg.ServerAddr, cfg.Upstream, pool, logger)
	if err != nil {
		logger.Error("failed to bind relay endpoints", "err", err)
		return int(relayconfig.ExitBindError)
	}

	start := time.Now()
	statusSrv := statusapi.New("127.0.0.1:8053", func() statusapi.Stats {
		return statusapi.Stats{
			IDsBound:      ids.Bound(),
			IDsFree:       1<<16 - ids.Bound(),
			UptimeSeconds: time.Since(start).Seconds(),
		}
	})
	go func() {
		if err := statusSrv.ListenAndServe(); err != nil {
			logger.Warn("status API stopped", "err", err)
		}
	}()
	defer statusSrv.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("dnsrelay starting", "listen", cfg.ServerAddr, "upstream", cfg.Upstream, "instance", instanceID)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("relay event loop exited", "err", err)
		return int(relayconfig.ExitBindError)
	}

	logger.Info("dnsrelay stopped")
	return int(relayconfig.ExitOK)
}
