// Package cli implements the shapeshift command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/funvibe/shapeshift/internal/manifest"
	"github.com/funvibe/shapeshift/internal/metrics"
	"github.com/funvibe/shapeshift/pkg/synth"
)

// errFailed is returned when diagnostics were printed; the command already
// reported the details.
var errFailed = errors.New("synthesis failed")

type app struct {
	verbose     bool
	jobs        int
	noBuiltins  bool
	metricsFile string
	toStdout    bool

	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
	// newLogger builds the logger in PersistentPreRunE; tests replace it.
	newLogger func(verbose bool) (*zap.Logger, error)
}

func productionLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: zap.NewNop(), newLogger: productionLogger}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "shapeshift",
		Short: "Synthesize capability forwarding for tagged unions",
		Long: `shapeshift matches every variant of a tagged union against a shape pattern,
checks the constraint clause, and synthesizes one forwarding implementation
per capability marked with ^ in the clause.

Unions and capabilities are declared in shapeshift.yaml. Without arguments,
the manifest is looked up from the working directory upwards.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.newLogger == nil {
				return nil
			}
			logger, err := a.newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.IntVarP(&a.jobs, "jobs", "j", 0, "unions synthesized concurrently (0 = unlimited)")
	flags.BoolVar(&a.noBuiltins, "no-builtins", false, "start without the built-in capability catalog")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(a.generateCommand(), a.checkCommand(), a.capabilitiesCommand(), a.watchCommand())
	return root
}

func (a *app) generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [manifest...]",
		Short: "Write the synthesized code of each manifest to its output file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args, true)
		},
	}
	cmd.Flags().BoolVar(&a.toStdout, "stdout", false, "print generated code instead of writing files")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [manifest...]",
		Short: "Report diagnostics without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args, false)
		},
	}
}

func (a *app) capabilitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities [manifest...]",
		Short: "List resolvable capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _ := a.engine()
			paths, err := manifestPaths(args)
			if err != nil && !errors.Is(err, errNoManifest) {
				return err
			}
			for _, p := range paths {
				m, err := manifest.LoadManifest(p)
				if err != nil {
					return err
				}
				decls, err := m.CapabilityDecls()
				if err != nil {
					newPrinter(a.stderr).diagnostics(p, err)
					return errFailed
				}
				for _, d := range decls {
					engine.Register(d)
				}
			}
			for _, name := range engine.Registry().Names() {
				s, _ := engine.Registry().Resolve(name)
				origin := "builtin"
				if !s.Builtin {
					origin = fmt.Sprintf("registered at %d:%d", s.Origin.Line, s.Origin.Column)
				}
				fmt.Fprintf(a.stdout, "%-22s %d methods  %s\n", name, len(s.Methods), origin)
			}
			return nil
		},
	}
}

func (a *app) engine() (*synth.Engine, *metrics.Collector) {
	var collector *metrics.Collector
	if a.metricsFile != "" {
		collector = metrics.NewCollector(metrics.Config{}, prometheus.NewRegistry())
	}
	opts := []synth.Option{synth.WithLogger(a.logger), synth.WithMetrics(collector)}
	if a.noBuiltins {
		opts = append(opts, synth.WithoutBuiltins())
	}
	return synth.New(opts...), collector
}

// run loads the manifests, synthesizes every union and, when write is set,
// writes one output file per manifest whose unions all succeeded.
func (a *app) run(ctx context.Context, args []string, write bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	paths, err := manifestPaths(args)
	if err != nil {
		return err
	}
	manifests := make([]*manifest.Manifest, 0, len(paths))
	for _, p := range paths {
		m, err := manifest.LoadManifest(p)
		if err != nil {
			return err
		}
		manifests = append(manifests, m)
	}

	engine, collector := a.engine()
	defer func() {
		if err := collector.WriteTextfile(a.metricsFile); err != nil {
			a.logger.Warn("metrics not written", zap.Error(err))
		}
	}()

	results, err := engine.Batch(ctx, manifests, a.jobs)
	if err != nil {
		if agg, ok := asAggregate(err); ok {
			newPrinter(a.stderr).diagnostics(agg.Subject, err)
			return errFailed
		}
		return err
	}

	errOut := newPrinter(a.stderr)
	out := newPrinter(a.stdout)
	failed := make(map[*manifest.Manifest]bool)
	for _, r := range results {
		if r.Err != nil {
			failed[r.Manifest] = true
			errOut.diagnostics(r.Union, r.Err)
			continue
		}
		if !write {
			out.ok("%s (%s)", r.Union, plural(len(r.Output.Impls), "implementation"))
		}
	}

	if write {
		for _, m := range manifests {
			if failed[m] {
				continue
			}
			if err := a.emit(m, synth.RenderAll(m.Output.Header, synth.Outputs(results, m))); err != nil {
				return err
			}
		}
	}
	if len(failed) > 0 {
		return errFailed
	}
	return nil
}

func (a *app) emit(m *manifest.Manifest, src string) error {
	if a.toStdout {
		_, err := io.WriteString(a.stdout, src)
		return err
	}
	path := m.OutputPath()
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	newPrinter(a.stdout).ok("wrote %s", path)
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
