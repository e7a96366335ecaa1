package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	proxyproto "github.com/pires/go-proxyproto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"gitlab.com/gitlab-org/static-pipeline/internal/netutil"
)

func closeAll[T io.Closer](cs []T) {
	for _, c := range cs {
		c.Close()
	}
}

func (a *theApp) listenConfig() *net.ListenConfig {
	return &net.ListenConfig{KeepAlive: a.config.Server.ListenKeepAlive}
}

// listen opens every configured listener. Connections of all of them share
// a single pool when max-conns is set.
func (a *theApp) listen(ctx context.Context) ([]net.Listener, error) {
	var limiter *netutil.Limiter
	if a.config.General.MaxConns > 0 {
		limiter = netutil.NewLimiter(a.config.General.MaxConns)
	}

	var listeners []net.Listener

	open := func(addr string, proxyv2 bool) error {
		l, err := a.listenConfig().Listen(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}

		if limiter != nil {
			l = limiter.Listen(l)
		}

		if proxyv2 {
			l = &proxyproto.Listener{
				Listener: l,
				Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
					return proxyproto.REQUIRE, nil
				},
			}
		}

		log.WithFields(log.Fields{
			"listener": addr,
			"proxyv2":  proxyv2,
		}).Debug("Set up listener")

		listeners = append(listeners, l)
		return nil
	}

	for _, addr := range a.config.Listeners.HTTP {
		if err := open(addr, false); err != nil {
			closeAll(listeners)
			return nil, err
		}
	}

	for _, addr := range a.config.Listeners.Proxyv2 {
		if err := open(addr, true); err != nil {
			closeAll(listeners)
			return nil, err
		}
	}

	return listeners, nil
}

// listenMetrics returns nil when no metrics address is configured.
func (a *theApp) listenMetrics(ctx context.Context) (net.Listener, error) {
	addr := a.config.General.MetricsAddress
	if addr == "" {
		return nil, nil
	}

	l, err := a.listenConfig().Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on metrics address %s: %w", addr, err)
	}

	log.WithField("listener", addr).Debug("Set up metrics listener")

	return l, nil
}

func (a *theApp) newServer(handler http.Handler) *http.Server {
	if a.config.General.UseH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	return &http.Server{
		Handler:           handler,
		ReadTimeout:       a.config.Server.ReadTimeout,
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}
}

func metricsRouter() http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

// serve runs the servers until ctx is cancelled or one of them fails, then
// shuts all of them down gracefully.
func (a *theApp) serve(ctx context.Context, handler http.Handler, listeners []net.Listener, metricsListener net.Listener) error {
	servers := []*http.Server{a.newServer(handler)}
	g, gctx := errgroup.WithContext(ctx)

	serve := func(s *http.Server, l net.Listener) {
		g.Go(func() error {
			if err := s.Serve(l); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	for _, l := range listeners {
		serve(servers[0], l)
	}

	if metricsListener != nil {
		metricsServer := &http.Server{
			Handler:           metricsRouter(),
			ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
		}
		servers = append(servers, metricsServer)
		serve(metricsServer, metricsListener)
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		log.Info("Shutting down")

		var shutdownErr error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil && shutdownErr == nil {
				shutdownErr = err
			}
		}

		return shutdownErr
	})

	return g.Wait()
}
