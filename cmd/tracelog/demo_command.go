package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/erc7824/tracelog/pkg/config"
	"github.com/erc7824/tracelog/pkg/log"
	"github.com/erc7824/tracelog/pkg/spanlog"
	"github.com/erc7824/tracelog/pkg/spanlog/otelspan"
	"github.com/erc7824/tracelog/pkg/spanlog/slogspan"
)

var errCardDeclined = errors.New("card declined")

type demoFlags struct {
	format            string
	includeLoggerName bool
	includeKV         bool
	orders            int
}

func newDemoCommand(configPath *string) *cobra.Command {
	var flags demoFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run traced sample operations and print the finished spans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.orders < 1 {
				return fmt.Errorf("--orders must be at least 1")
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), *configPath, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "Log output format: text or json")
	cmd.Flags().BoolVar(&flags.includeLoggerName, "include-logger-name", false, "Add the logger name to span events")
	cmd.Flags().BoolVar(&flags.includeKV, "include-kv", false, "Add record key-value pairs to span events")
	cmd.Flags().IntVar(&flags.orders, "orders", 3, "Number of sample operations; the last one fails")
	return cmd
}

func runDemo(ctx context.Context, out, logOut io.Writer, configPath string, flags demoFlags) error {
	diag, err := newDiagLogger()
	if err != nil {
		return fmt.Errorf("read log config: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("create span exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	registry := prometheus.NewRegistry()
	provider, closeProvider, err := newDemoProvider(configPath, flags, diag, spanlog.NewMetricsWithRegistry(registry))
	if err != nil {
		return err
	}
	defer closeProvider()

	var sink slog.Handler
	switch flags.format {
	case "json":
		sink = slog.NewJSONHandler(logOut, nil)
	case "text":
		sink = slog.NewTextHandler(logOut, nil)
	default:
		return fmt.Errorf("unknown format %q", flags.format)
	}

	spanHandler, err := slogspan.NewHandler(provider, "demo")
	if err != nil {
		return err
	}
	logger := slog.New(slogmulti.Fanout(spanHandler, sink))

	templates, err := provider.CreateLogger("demo.templates")
	if err != nil {
		return err
	}

	tracer := tp.Tracer("tracelog/demo")
	for i := 0; i < flags.orders; i++ {
		d := demoOrder{
			id:     uuid.NewString(),
			amount: 10 * (i + 1),
			items:  i + 1,
			fail:   i == flags.orders-1,
		}
		if err := d.run(ctx, tracer, logger, templates, diag, provider); err != nil {
			return err
		}
	}

	return printMetrics(out, registry)
}

func newDemoProvider(configPath string, flags demoFlags, diag log.Logger, metrics *spanlog.Metrics) (*spanlog.Provider, func(), error) {
	setup := func(o *spanlog.Options) {
		o.SpanResolver = otelspan.Resolver{}
		o.IncludeLoggerName = o.IncludeLoggerName || flags.includeLoggerName
		o.IncludeKeyValuePairs = o.IncludeKeyValuePairs || flags.includeKV
	}

	if configPath == "" {
		var options spanlog.Options
		setup(&options)
		p := spanlog.NewStaticProvider(options, spanlog.WithLogger(diag), spanlog.WithMetrics(metrics))
		return p, func() { _ = p.Close() }, nil
	}

	w, err := config.Watch(configPath, config.WithLogger(diag), config.WithConfigure(setup))
	if err != nil {
		return nil, nil, fmt.Errorf("watch config: %w", err)
	}
	p := spanlog.NewProvider(w,
		spanlog.WithFilter(w.Filter()),
		spanlog.WithLogger(diag),
		spanlog.WithMetrics(metrics))

	return p, func() {
		_ = p.Close()
		_ = w.Close()
	}, nil
}

type demoOrder struct {
	id     string
	amount int
	items  int
	fail   bool
}

func (d demoOrder) run(ctx context.Context, tracer trace.Tracer, logger *slog.Logger, templates *spanlog.Logger, diag log.Logger, provider *spanlog.Provider) error {
	ctx, span := tracer.Start(ctx, "checkout", trace.WithAttributes(attribute.String("order.id", d.id)))
	defer span.End()

	logger.InfoContext(ctx, "order accepted", "order_id", d.id, slog.Group("items", "count", d.items))

	err := templates.Log(ctx, spanlog.LevelInformation, spanlog.EventID{ID: 1, Name: "charge"},
		spanlog.Template("charging {Amount} for order {OrderID}", d.amount, d.id), nil, spanlog.FormatState)
	if err != nil {
		return err
	}

	spanlog.NewSpanLogger(ctx, diag, provider).Debug("order state persisted", "order_id", d.id)

	if d.fail {
		logger.ErrorContext(ctx, "charge failed", "error", errors.Wrapf(errCardDeclined, "charge order %s", d.id))
		return nil
	}

	logger.InfoContext(ctx, "order completed", "order_id", d.id)
	return nil
}

func printMetrics(out io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
