package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cpubars/internal/config"
	"cpubars/internal/feed"
	"cpubars/internal/metrics"
	"cpubars/internal/models"
	"cpubars/internal/utils"
	"cpubars/internal/version"
	"cpubars/internal/view"
	"cpubars/internal/viewer"

	"github.com/gin-gonic/gin"
)

const usage = `usage: cpubars [--config|-c path] [--page URL] [--local] [--once] [--version]`

// cliOptions are the command line flags; they override the config file.
type cliOptions struct {
	configPath string
	page       string
	local      bool
	once       bool
	version    bool
}

type App struct {
	cfg     *config.Config
	logger  *utils.Logger
	metrics *metrics.Metrics
	root    *view.Root
	viewer  *viewer.Server
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

func parseArgs(args []string) (cliOptions, error) {
	var opts cliOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--config", "-c", "--page":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a value", arg)
			}
			value := strings.TrimSpace(args[i+1])
			i++
			if arg == "--page" {
				opts.page = value
			} else {
				opts.configPath = value
			}
		case "--local":
			opts.local = true
		case "--once":
			opts.once = true
		case "--version", "-v":
			opts.version = true
		default:
			return opts, fmt.Errorf("unknown argument %q", arg)
		}
	}
	if opts.local && opts.once {
		return opts, errors.New("--local and --once cannot be combined")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, "cpubars", version.String())
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.page != "" {
		cfg.PageURL = opts.page
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	app := newApp(cfg, stdout)
	defer app.logger.Close()
	app.logger.Writef("cpubars %s starting (page=%s display=%s)", version.String(), cfg.PageURL, cfg.Display)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if app.viewer != nil {
		if err := app.viewer.Start(nil); err != nil {
			app.logger.Writef("Viewer failed to start: %v", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.viewer.Shutdown(shutdownCtx); err != nil {
				app.logger.Writef("Viewer shutdown error: %v", err)
			}
		}()
	}

	if opts.once {
		return app.renderSnapshot(ctx)
	}

	source, err := app.source(opts.local)
	if err != nil {
		app.logger.Writef("Cannot start feed: %v", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	code := 0
	if err := source.Run(ctx, app.render); err != nil {
		app.logger.Writef("Feed stopped: %v", err)
		fmt.Fprintln(os.Stderr, err)
		code = 1
		// Keep the last view available in the browser until asked to exit.
		if app.viewer != nil && errors.Is(err, feed.ErrDisconnected) {
			<-ctx.Done()
		}
	}
	app.logger.Write("cpubars exited")
	return code
}

func newApp(cfg *config.Config, stdout io.Writer) *App {
	gin.SetMode(gin.ReleaseMode)
	enableVirtualTerminal()

	app := &App{
		cfg:     cfg,
		logger:  utils.NewLogger(cfg.LogFile),
		metrics: metrics.New(),
	}
	if cfg.ViewerEnabled {
		app.viewer = viewer.New(viewer.Options{
			Addr:    cfg.ViewerAddr,
			Logger:  app.logger,
			Metrics: app.metrics,
		})
	}

	var displays view.MultiDisplay
	if cfg.WantsTerminal() {
		displays = append(displays, view.NewTerminalDisplay(stdout, cfg.BarWidth))
	}
	if cfg.WantsHTML() {
		displays = append(displays, &view.HTMLDisplay{Sink: app.htmlSink(stdout)})
	}
	app.root = view.NewRoot(displays)
	return app
}

// htmlSink publishes to the viewer when it runs, and prints one body per line
// when html output was asked for without a viewer.
func (a *App) htmlSink(stdout io.Writer) func([]byte) {
	return func(body []byte) {
		if a.viewer != nil {
			a.viewer.Publish(body)
			return
		}
		fmt.Fprintf(stdout, "%s\n", body)
	}
}

func (a *App) source(local bool) (feed.Source, error) {
	if local {
		return feed.NewLocalSource(a.logger), nil
	}
	client, err := feed.NewClient(a.cfg.PageURL, feed.ClientOptions{
		HandshakeTimeout: time.Duration(a.cfg.HandshakeTimeout),
		ReadLimit:        a.cfg.ReadLimit,
		Logger:           a.logger,
		Metrics:          a.metrics,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Writef("Connecting to %s", client.Target())
	return client, nil
}

// render is the single feed handler: one synchronous render pass per sample set.
func (a *App) render(samples models.SampleSet) error {
	a.metrics.Renders.Inc()
	if err := a.root.Render(samples); err != nil {
		a.metrics.RenderErrors.Inc()
		return err
	}
	a.metrics.Bars.Set(float64(len(samples)))
	return nil
}

func (a *App) renderSnapshot(ctx context.Context) int {
	timeout := time.Duration(a.cfg.HandshakeTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	samples, err := feed.FetchSnapshot(fetchCtx, &http.Client{}, a.cfg.PageURL)
	if err != nil {
		a.logger.Writef("Snapshot failed: %v", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := a.render(samples); err != nil {
		a.logger.Writef("Render failed: %v", err)
		return 1
	}
	return 0
}
