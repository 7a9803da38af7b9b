// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Command dnsauthd is the authoritative name server daemon: it loads
// a single zone and ACL from a config file, answers UDP and TCP
// queries against the lookup engine, and hot-reloads the zone and ACL
// when the config manager reports a change.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samresto/dnscore/acl"
	"github.com/samresto/dnscore/authority"
	"github.com/samresto/dnscore/config"
	"github.com/samresto/dnscore/metrics"
	"github.com/samresto/dnscore/transport"
	"github.com/samresto/dnscore/wire"
	"github.com/samresto/dnscore/zone"
)

// multiLevelHandler routes log records to stdout or stderr based on level.
type multiLevelHandler struct {
	infoHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *multiLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (h *multiLevelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errorHandler.Handle(ctx, r)
	}
	return h.infoHandler.Handle(ctx, r)
}

func (h *multiLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &multiLevelHandler{
		infoHandler:  h.infoHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *multiLevelHandler) WithGroup(name string) slog.Handler {
	return &multiLevelHandler{
		infoHandler:  h.infoHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

const Version = "1.0.0"

// state holds the hot-reloadable pieces of the server: the lookup
// engine (wrapping the zone) and the client ACL.
type state struct {
	engine *authority.Engine
	acl    *acl.ACL
}

// server wires the current state to the UDP/TCP transports and swaps
// it out atomically whenever the config manager reports a reload.
type server struct {
	cur     atomic.Pointer[state]
	metrics *metrics.Metrics
}

func loadState(cfg *config.Config) (*state, error) {
	z, err := zone.LoadFile(cfg.Zone.File)
	if err != nil {
		return nil, fmt.Errorf("load zone: %w", err)
	}

	var a *acl.ACL
	if cfg.Zone.ACL != "" {
		a, err = acl.LoadFile(cfg.Zone.ACL)
	} else {
		a, err = acl.FromRules(cfg.Zone.ACLRule.Allow, cfg.Zone.ACLRule.Deny)
	}
	if err != nil {
		return nil, fmt.Errorf("load acl: %w", err)
	}

	return &state{engine: authority.NewEngine(z), acl: a}, nil
}

func (s *server) handle(ctx context.Context, request []byte, remoteAddr net.Addr) []byte {
	start := time.Now()
	cur := s.cur.Load()

	query, err := wire.Decode(request)
	if err != nil {
		s.metrics.RecordError("parse_error")
		return nil
	}

	host, _, err := net.SplitHostPort(remoteAddr.String())
	if err != nil {
		host = remoteAddr.String()
	}
	clientIP := net.ParseIP(host)

	if clientIP != nil && !cur.acl.AllowQuery(clientIP) {
		s.metrics.RecordError("acl_denied")
		return refuse(query).Encode()
	}

	if len(query.Question) > 0 {
		s.metrics.RecordQuery(query.Question[0].Type.String())
	}

	response, outcome := cur.engine.Serve(query)
	s.metrics.RecordLookup(string(outcome))
	s.metrics.RecordLatency(float64(time.Since(start).Microseconds()) / 1000.0)

	return response.Encode()
}

// refuse builds a Refused response echoing the query's ID and question,
// for requests an ACL rejects before the lookup engine ever sees them.
func refuse(query wire.Message) wire.Message {
	return wire.Message{
		Header: wire.Header{
			ID:            query.Header.ID,
			QueryResponse: true,
			OpCode:        query.Header.OpCode,
			ResponseCode:  wire.RCodeRefused,
		},
		Question: query.Question,
	}
}

func main() {
	handler := &multiLevelHandler{
		infoHandler:  slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		errorHandler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	slog.SetDefault(slog.New(handler))

	var (
		configFile = flag.String("c", "", "config file (YAML)")
		version    = flag.Bool("v", false, "show version")
	)
	flag.Parse()

	if *version {
		fmt.Printf("dnsauthd %s\n", Version)
		os.Exit(0)
	}

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "usage: dnsauthd -c config.yaml")
		os.Exit(1)
	}

	srv := &server{}

	mgr, err := config.NewManager(*configFile, func(cfg *config.Config, changes config.Changes) error {
		if !changes.ZoneFileChanged && !changes.ACLChanged {
			return nil
		}
		st, err := loadState(cfg)
		if err != nil {
			return err
		}
		srv.cur.Store(st)
		slog.Info("reloaded zone/acl", "zone_file", cfg.Zone.File)
		return nil
	})
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := mgr.Get()

	m, err := metrics.New(cfg.Metrics.OTELEndpoint, cfg.Metrics.PrometheusEndpoint)
	if err != nil {
		slog.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	srv.metrics = m

	initial, err := loadState(cfg)
	if err != nil {
		slog.Error("failed to load initial zone/acl", "error", err)
		os.Exit(1)
	}
	srv.cur.Store(initial)

	watching := false
	if cfg.Server.AutoReload {
		if err := mgr.Start(); err != nil {
			slog.Error("failed to start config watcher", "error", err)
			os.Exit(1)
		}
		watching = true
	}

	udpServer := &transport.UDPServer{Addr: cfg.Server.BindUDP, Handler: srv.handle}
	tcpServer := &transport.TCPServer{Addr: cfg.Server.BindTCP, Handler: srv.handle}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("shutting down")
		udpServer.Shutdown()
		tcpServer.Shutdown()
		if watching {
			mgr.Stop()
		}
		if err := m.Shutdown(context.Background()); err != nil {
			slog.Error("metrics shutdown failed", "error", err)
		}
		os.Exit(0)
	}()

	go func() {
		if err := tcpServer.ListenAndServe(); err != nil {
			slog.Error("tcp server error", "error", err)
		}
	}()

	slog.Info("dnsauthd starting", "version", Version, "bind_udp", cfg.Server.BindUDP, "bind_tcp", cfg.Server.BindTCP)
	if err := udpServer.ListenAndServe(); err != nil {
		slog.Error("udp server error", "error", err)
		os.Exit(1)
	}
}
