package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cpubars/internal/metrics"
	"cpubars/internal/models"
	"cpubars/internal/utils"

	"github.com/gorilla/websocket"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultReadLimit        = 64 * 1024
)

var (
	// ErrDial is returned when the push connection cannot be opened.
	ErrDial = errors.New("feed dial failed")
	// ErrDisconnected is returned when an open connection drops. Updates stop;
	// the client does not reconnect.
	ErrDisconnected = errors.New("feed disconnected")
)

// Handler receives each decoded sample set. It runs to completion before the
// next message is read.
type Handler func(samples models.SampleSet) error

// Source produces sample sets until it stops or ctx is cancelled.
type Source interface {
	Run(ctx context.Context, handle Handler) error
}

// ClientOptions tunes the websocket client. Zero values pick defaults.
type ClientOptions struct {
	HandshakeTimeout time.Duration
	ReadLimit        int64
	Header           http.Header
	Logger           *utils.Logger
	Metrics          *metrics.Metrics
}

// Client is the push-feed consumer. It never writes to the connection.
type Client struct {
	target  string
	dialer  *websocket.Dialer
	opts    ClientOptions
	logger  *utils.Logger
	metrics *metrics.Metrics
}

// NewClient derives the target from the page location.
func NewClient(page string, opts ClientOptions) (*Client, error) {
	target, err := TargetURL(page)
	if err != nil {
		return nil, err
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	return &Client{
		target: target.String(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Target returns the websocket URL the client connects to.
func (c *Client) Target() string {
	return c.target
}

// Run opens the connection and dispatches messages until the connection
// drops or ctx is cancelled. Cancellation returns nil.
func (c *Client) Run(ctx context.Context, handle Handler) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.target, c.opts.Header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: %s: %v (status %d)", ErrDial, c.target, err, resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: %v", ErrDial, c.target, err)
	}
	conn.SetReadLimit(c.opts.ReadLimit)
	c.logf("Feed connected to %s", c.target)
	c.setConnected(1)
	defer c.setConnected(0)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logf("Feed error: %v", err)
			}
			c.logf("Feed disconnected from %s, updates stopped", c.target)
			return fmt.Errorf("%w: %v", ErrDisconnected, err)
		}
		c.dispatch(payload, handle)
	}
}

func (c *Client) dispatch(payload []byte, handle Handler) {
	started := time.Now()
	if c.metrics != nil {
		c.metrics.MessagesReceived.Inc()
	}
	samples, err := models.DecodeSampleSet(payload)
	if err != nil {
		if c.metrics != nil {
			c.metrics.DecodeErrors.Inc()
		}
		c.logf("Dropping feed message: %v", err)
		return
	}
	if handle == nil {
		return
	}
	if err := handle(samples); err != nil {
		c.logf("Render failed: %v", err)
	}
	if c.metrics != nil {
		c.metrics.RenderSeconds.Observe(time.Since(started).Seconds())
	}
}

func (c *Client) setConnected(v float64) {
	if c.metrics != nil {
		c.metrics.Connected.Set(v)
	}
}

func (c *Client) logf(format string, args ...interface{}) {
	utils.Logf(c.logger, format, args...)
}
