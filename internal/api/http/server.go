package http

import (
	"compress/gzip"
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gitlab.com/nevasik7/alerting/logger"

	"tokenlens/internal/api/http/mw"
	"tokenlens/internal/config"
)

type ServerDeps struct {
	Logger logger.Logger
	Cfg    *config.Config
	Stats  Stats
	Redis  *redis.Client // rate limit state, nil disables the limiter
}

type Server struct {
	log logger.Logger
	srv *http.Server
}

func NewServer(d *ServerDeps) *Server {
	api := NewAPI(d.Logger, d.Stats)

	var rateLimitMW *mw.RateLimitMiddleware
	if d.Redis != nil {
		rateLimitMW = mw.NewRateLimit(d.Redis, mw.RateBucket{
			RefillPerSec: d.Cfg.RateLimit.ByIP.RefillPerSec,
			Burst:        d.Cfg.RateLimit.ByIP.Burst,
		})
	}

	var corsMW *mw.CORSMiddleware
	if d.Cfg.API.HTTP.CORS.Enabled {
		corsMW = mw.NewCORSConfig(&d.Cfg.API.HTTP.CORS)
	}

	router := BuildRouter(
		api,
		mw.NewLogging(d.Logger),
		mw.NewGzip(gzip.BestSpeed, d.Logger),
		rateLimitMW,
		corsMW,
	)

	return &Server{
		log: d.Logger,
		srv: &http.Server{
			Addr:         d.Cfg.API.HTTP.Addr,
			Handler:      router,
			ReadTimeout:  d.Cfg.API.HTTP.ReadTimeout,
			WriteTimeout: d.Cfg.API.HTTP.WriteTimeout,
			IdleTimeout:  d.Cfg.API.HTTP.IdleTimeout,
		},
	}
}

func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
