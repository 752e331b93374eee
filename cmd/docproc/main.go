// Command docproc simulates a document-processing pipeline driving the
// progress engine: a parent emitter aggregates weighted stage children while
// the chosen consumer renders the aggregate timeline.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	logrusr "github.com/bombsimon/logrusr/v3"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/docforge/progress"
	"github.com/docforge/progress/consumer"
	"github.com/docforge/progress/tracing"
)

var (
	settingsFile   string
	outputFormat   string
	throttle       time.Duration
	logLevel       int
	enableJaeger   bool
	jaegerEndpoint string
)

func DocprocCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docproc",
		Short: "Simulate a document pipeline reporting progress",
		RunE: func(c *cobra.Command, args []string) error {
			logrusLog := logrus.New()
			logrusLog.SetOutput(os.Stdout)
			logrusLog.SetFormatter(&logrus.TextFormatter{})
			logrusLog.SetLevel(logrus.Level(logLevel))
			log := logrusr.New(logrusLog)

			settings := defaultSettings()
			if settingsFile != "" {
				var err error
				settings, err = loadSettings(settingsFile)
				if err != nil {
					return err
				}
			}

			return run(c.Context(), log, settings)
		},
	}

	rootCmd.Flags().StringVar(&settingsFile, "settings", "", "path to a YAML pipeline description")
	rootCmd.Flags().StringVar(&outputFormat, "output", "bar", "progress output format (text|json|bar|none)")
	rootCmd.Flags().DurationVar(&throttle, "throttle", 100*time.Millisecond, "minimum interval between progress notifications")
	rootCmd.Flags().IntVar(&logLevel, "verbose", 4, "level for logging output")
	rootCmd.Flags().BoolVar(&enableJaeger, "enable-jaeger", false, "enable tracer exports to jaeger endpoint")
	rootCmd.Flags().StringVar(&jaegerEndpoint, "jaeger-endpoint", "http://localhost:14268/api/traces", "jaeger endpoint to collect tracing data")
	return rootCmd
}

func main() {
	if err := DocprocCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log logr.Logger, settings Settings) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tp, err := tracing.InitTracerProvider(log, tracing.Options{
		ServiceName:    "docproc",
		EnableJaeger:   enableJaeger,
		JaegerEndpoint: jaegerEndpoint,
	})
	if err != nil {
		return err
	}
	defer tracing.Shutdown(ctx, log, tp)

	ctx, span := tracing.StartNewSpan(ctx, "docproc")
	defer span.End()

	parent, err := progress.NewEmitter(
		progress.WithTotal(100),
		progress.WithLabel(settings.Document),
		progress.WithThrottleInterval(throttle),
		progress.WithLogger(log),
	)
	if err != nil {
		return err
	}

	out, err := outputConsumer(outputFormat)
	if err != nil {
		return err
	}
	if out != nil {
		parent.AddConsumer(out)
	}
	parent.AddConsumer(consumer.NewSpanConsumer(span))

	children := make([]*progress.Emitter, len(settings.Stages))
	for i, stage := range settings.Stages {
		child, err := parent.CreateChild(progress.Total(stage.Units), stage.Weight, stage.Name)
		if err != nil {
			return err
		}
		child.AddConsumer(consumer.NewLogConsumer(log.WithName(stage.Name)))
		children[i] = child
	}

	// The emitter is driven from a single goroutine; the stream reader is
	// the one surface meant for concurrent consumption.
	g, ctx := errgroup.WithContext(ctx)

	updates := parent.Stream(ctx)
	g.Go(func() error {
		var received int
		for update := range updates {
			received++
			if update.Kind == progress.KindCompleted {
				log.Info("pipeline complete", "updates_observed", received)
			}
		}
		return nil
	})

	g.Go(func() error {
		for i, stage := range settings.Stages {
			if err := runStage(ctx, children[i], stage); err != nil {
				return err
			}
		}
		return parent.Complete()
	})

	return g.Wait()
}

// runStage ticks the stage's child emitter once per simulated work unit.
func runStage(ctx context.Context, child *progress.Emitter, stage Stage) error {
	tick := time.Duration(stage.TickMillis) * time.Millisecond
	for i := 0; i < stage.Units; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tick):
		}
		if err := child.Inc(); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}
	return child.Complete()
}

func outputConsumer(format string) (progress.Consumer, error) {
	switch format {
	case "text":
		return consumer.NewTextConsumer(os.Stderr), nil
	case "json":
		return consumer.NewJSONConsumer(os.Stderr), nil
	case "bar":
		return consumer.NewBarConsumer(os.Stderr), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown output format %q, expected text, json, bar or none", format)
	}
}
