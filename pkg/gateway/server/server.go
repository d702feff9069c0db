// Package server wires the gateway's routes, middlewares, and shared
// upstream HTTP client.
package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kaiwa-go/kaiwa/pkg/gateway/config"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/handlers"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/metrics"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/mw"
	"github.com/kaiwa-go/kaiwa/pkg/gateway/ratelimit"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	httpClient *http.Client
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
}

func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: cfg.UpstreamConnectTimeout,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: cfg.UpstreamResponseHeaderTimeout,
		},
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		mux:        http.NewServeMux(),
		httpClient: httpClient,
		limiter: ratelimit.New(ratelimit.Config{
			RPS:                   cfg.LimitRPS,
			Burst:                 cfg.LimitBurst,
			MaxConcurrentRequests: cfg.LimitMaxConcurrentRequests,
		}),
		metrics: metrics.New("kaiwa"),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{Config: s.cfg})
	s.mux.Handle("/metrics", s.metrics.Handler())

	s.mux.Handle("/chat", handlers.ChatHandler{
		Config:     s.cfg,
		HTTPClient: s.httpClient,
		Logger:     s.logger,
		Metrics:    s.metrics,
	})
	s.mux.Handle("/translate", handlers.TranslateHandler{
		Config:     s.cfg,
		HTTPClient: s.httpClient,
		Logger:     s.logger,
		Metrics:    s.metrics,
	})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.RateLimit(s.limiter, h)
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
