package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcp "github.com/felixgeelhaar/mcp-server"
	"github.com/felixgeelhaar/mcp-server/config"
	"github.com/felixgeelhaar/mcp-server/logging"
	"github.com/felixgeelhaar/mcp-server/telemetry"
	"github.com/felixgeelhaar/mcp-server/tools"
	"github.com/felixgeelhaar/mcp-server/transport"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type flags struct {
	configPath string
	transport  string
	addr       string
	logLevel   string
	logFormat  string
	logFile    string
	rate       int
	burst      int
	telemetry  bool
}

func newRootCmd() *cobra.Command {
	return newCommand(&flags{})
}

// newCommand builds the root command with its flags bound to f.
func newCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcp-server",
		Short:         "MCP tool server exposing echo, uppercase and calculate",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, os.Stdin, os.Stdout)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	fs.StringVar(&f.transport, "transport", config.TransportStdio, "Transport: stdio or websocket")
	fs.StringVar(&f.addr, "addr", ":8080", "Listen address for the websocket transport")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", config.FormatJSON, "Log format: json or console")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to a rotating file instead of stderr")
	fs.IntVar(&f.rate, "rate", 0, "Requests per second allowed per client (0 disables)")
	fs.IntVar(&f.burst, "burst", 0, "Rate limit burst (defaults to --rate)")
	fs.BoolVar(&f.telemetry, "telemetry", false, "Enable in-process OpenTelemetry")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mcp-server %s (protocol %s)\n", version, mcp.ProtocolVersion)
		},
	}
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("transport") {
		cfg.Transport.Kind = f.transport
	}
	if changed("addr") {
		cfg.Transport.Addr = f.addr
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if changed("rate") {
		cfg.Limits.Rate = f.rate
	}
	if changed("burst") {
		cfg.Limits.Burst = f.burst
	}
	if changed("telemetry") {
		cfg.Telemetry.Enabled = f.telemetry
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	zl, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	return serve(ctx, cfg, zl, in, out)
}

// serve registers the tools and blocks on the configured transport.
// Cancellation of ctx is a clean shutdown.
func serve(ctx context.Context, cfg config.Config, zl *zap.Logger, in io.Reader, out io.Writer) error {
	logger := logging.NewAdapter(zl)

	srv := mcp.NewServer(mcp.ServerInfo{
		Name:         cfg.Server.Name,
		Version:      cfg.Server.Version,
		Capabilities: mcp.Capabilities{Tools: true},
	}, mcp.WithServerLogger(logger))

	if err := tools.Register(srv); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	opts := []mcp.ServeOption{
		mcp.WithLogger(logger),
		mcp.WithLimits(cfg.Limits.MiddlewareLimits()),
	}

	if cfg.Telemetry.Enabled {
		tp := telemetry.New(cfg.Server.Name, cfg.Server.Version, zl)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				zl.Warn("telemetry shutdown", zap.Error(err))
			}
		}()
		opts = append(opts, mcp.WithMiddleware(tp.Middleware()))
	}

	zl.Info("server started",
		zap.String("name", cfg.Server.Name),
		zap.String("version", cfg.Server.Version),
		zap.String("transport", cfg.Transport.Kind),
		zap.Int("tools", len(srv.Tools())),
	)

	switch cfg.Transport.Kind {
	case config.TransportWebSocket:
		zl.Info("listening", zap.String("addr", cfg.Transport.Addr))
		err := mcp.ServeWebSocket(ctx, srv, cfg.Transport.Addr, nil, opts...)
		return shutdownErr(zl, err)
	default:
		t := transport.NewStdio(
			transport.WithStdin(in),
			transport.WithStdout(out),
			transport.WithStdioLogger(logger),
		)
		return shutdownErr(zl, mcp.Serve(ctx, srv, t, opts...))
	}
}

func shutdownErr(zl *zap.Logger, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		zl.Info("server stopped")
		return nil
	}
	return err
}
