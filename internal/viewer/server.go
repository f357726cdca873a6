// Package viewer mirrors the HTML display into a browser: it serves a page
// shell and pushes every committed view body over a websocket.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"cpubars/internal/metrics"
	"cpubars/internal/utils"
	"cpubars/internal/version"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Options configures the viewer.
type Options struct {
	Addr    string
	Logger  *utils.Logger
	Metrics *metrics.Metrics
	// RateLimit defaults to 100 requests per minute per IP with a burst of 20.
	RateLimit rate.Limit
	Burst     int
}

// Server is the viewer HTTP surface.
type Server struct {
	hub         *Hub
	rateLimiter *RateLimiter
	logger      *utils.Logger
	metrics     *metrics.Metrics
	router      *gin.Engine
	srv         *http.Server
}

// New builds the router. Start the hub and listener with Start.
func New(opts Options) *Server {
	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Every(time.Minute / 100)
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	s := &Server{
		hub:         NewHub(opts.Logger, opts.Metrics),
		rateLimiter: NewRateLimiter(opts.RateLimit, opts.Burst),
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
	s.router = s.setupRouter()
	s.srv = &http.Server{
		Addr:           opts.Addr,
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	// Route net/http server errors into the log instead of stderr.
	s.srv.ErrorLog = log.New(logWriter{opts.Logger}, "", 0)
	return s
}

// logWriter adapts the logger to io.Writer for gin.
type logWriter struct{ logger *utils.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	utils.Logf(w.logger, "%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output: logWriter{s.logger},
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(SecurityHeaders())
	r.Use(s.rateLimiter.Middleware())

	r.GET("/", s.indexGET)
	r.GET("/view", s.viewGET)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": s.hub.GetClientCount()})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Info())
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/ws", s.hub.HandleWebSocket())

	return r
}

func (s *Server) indexGET(c *gin.Context) {
	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) viewGET(c *gin.Context) {
	body := s.hub.Latest()
	if body == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// Publish pushes a committed view body to every browser. It matches
// view.HTMLDisplay's Sink.
func (s *Server) Publish(body []byte) {
	s.hub.Broadcast(body)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub exposes the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the hub and serves on ln, or on Addr when ln is nil. It returns
// once the listener is bound.
func (s *Server) Start(ln net.Listener) error {
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", s.srv.Addr)
		if err != nil {
			return fmt.Errorf("viewer listen %s: %w", s.srv.Addr, err)
		}
	}
	go s.hub.Run()
	go func() {
		utils.Logf(s.logger, "Viewer listening on http://%s/", ln.Addr())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logf(s.logger, "Viewer stopped: %v", err)
		}
	}()
	return nil
}

// Shutdown stops accepting requests, closes browser connections and waits
// for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	s.rateLimiter.Stop()
	return s.srv.Shutdown(ctx)
}
