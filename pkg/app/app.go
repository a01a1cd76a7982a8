// Package app composes configuration, storage, the API client and the
// dashboard pages behind a single Run call.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"backoffice/pkg/api"
	"backoffice/pkg/auth"
	"backoffice/pkg/config"
	"backoffice/pkg/console"
	"backoffice/pkg/notify"
	"backoffice/pkg/pages"
	"backoffice/pkg/router"
	"backoffice/pkg/session"
	"backoffice/pkg/storage"
	"backoffice/pkg/version"
)

// Streams are the terminal the commands talk to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (s Streams) withDefaults() Streams {
	if s.In == nil {
		s.In = os.Stdin
	}
	if s.Out == nil {
		s.Out = os.Stdout
	}
	if s.Err == nil {
		s.Err = os.Stderr
	}
	return s
}

// Commands annotated with bootstrapKey=bootstrapMinimal only get config
// and a logger; they never touch the session store.
const (
	bootstrapKey     = "bootstrap"
	bootstrapMinimal = "minimal"
)

type options struct {
	configPath string
	apiURL     string
	storage    string
	logLevel   string
}

// env is everything a command needs once PersistentPreRunE has run.
type env struct {
	streams Streams
	opts    options

	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Store
	sessions *session.Store
	router   *router.Router
	deps     *pages.Deps
}

// Run executes one command line. It returns nil for --help.
func Run(ctx context.Context, args []string, streams Streams) error {
	e := &env{streams: streams.withDefaults()}
	defer e.close()

	root := e.rootCommand()
	root.SetArgs(args)
	root.SetIn(e.streams.In)
	root.SetOut(e.streams.Out)
	root.SetErr(e.streams.Err)
	return root.ExecuteContext(ctx)
}

func (e *env) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "backoffice",
		Short:        "Retail back-office dashboard",
		Long:         "Manage products, orders, staff and the rest of the shop catalogue from the terminal.",
		Version:      version.Version(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.bootstrap(cmd.Context(), cmd.Annotations[bootstrapKey] == bootstrapMinimal)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&e.opts.configPath, "config", config.DefaultPath(), "Path to the YAML configuration file")
	flags.StringVar(&e.opts.apiURL, "api-url", "", "Base URL of the retail API (overrides config)")
	flags.StringVar(&e.opts.storage, "storage", "", "Session storage driver: sqlite or memory")
	flags.StringVar(&e.opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		e.loginCommand(),
		e.registerCommand(),
		e.logoutCommand(),
		e.whoamiCommand(),
		e.openCommand(),
		e.mockServerCommand(),
		e.versionCommand(),
	)
	for _, info := range pages.Catalogue() {
		root.AddCommand(e.entityCommand(info))
	}
	return root
}

// bootstrap loads configuration and, unless minimal, the session and pages.
func (e *env) bootstrap(ctx context.Context, minimal bool) error {
	cfg, err := config.Load(e.opts.configPath)
	if err != nil {
		return err
	}
	if e.opts.apiURL != "" {
		cfg.API.BaseURL = e.opts.apiURL
	}
	if e.opts.storage != "" {
		cfg.Storage.Driver = e.opts.storage
	}
	if e.opts.logLevel != "" {
		cfg.Log.Level = e.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg

	logger, err := newLogger(cfg.Log, e.streams.Err)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	e.logger = logger
	if minimal {
		return nil
	}

	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.Path, cfg.StorageOrigin())
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	e.store = store

	e.sessions = session.NewStore(store, logger)
	if _, err := e.sessions.Load(ctx); err != nil {
		return err
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout()}),
		api.WithCredentials(e.sessions),
		api.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	out := console.NewRenderer(e.streams.Out)
	notes := notify.NewCenter(cfg.NotifyTTL(), logger)
	notes.Subscribe(out.Notification)

	e.router = router.New(e.sessions, logger)
	e.deps = &pages.Deps{
		Client:   client,
		Sessions: e.sessions,
		Router:   e.router,
		Notes:    notes,
		Confirm:  console.NewPrompter(e.streams.In, e.streams.Out),
		Auth:     auth.NewService(client, e.sessions, e.router, notes, logger),
		Out:      out,
		Logger:   logger,
	}
	pages.Routes(e.deps)

	logger.Debug("bootstrapped",
		zap.String("api", cfg.API.BaseURL),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("origin", cfg.StorageOrigin()),
	)
	return nil
}

func (e *env) close() {
	if e.router != nil {
		e.router.Close()
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil && e.logger != nil {
			e.logger.Warn("closing session storage", zap.Error(err))
		}
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// newLogger writes to w so logs never interleave with command output.
func newLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch cfg.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console", "":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}

// open navigates to target and reports where the router ended up. A
// redirect to the login page is reported as session.ErrNoSession.
func (e *env) open(ctx context.Context, target string) (router.Location, error) {
	if err := e.router.Navigate(ctx, target); err != nil {
		return router.Location{}, err
	}
	loc, ok := e.router.Current()
	if !ok {
		return router.Location{}, errors.New("no page mounted")
	}
	if loc.Path == router.LoginPath && target != router.LoginPath {
		return loc, fmt.Errorf("%s: %w; run `backoffice login` first", target, session.ErrNoSession)
	}
	return loc, nil
}
