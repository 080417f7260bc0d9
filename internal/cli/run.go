package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/relistan/rubberneck"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"logsynth/internal/collector"
	"logsynth/internal/config"
	"logsynth/internal/coordinator"
	"logsynth/internal/core"
	"logsynth/internal/corrupt"
	"logsynth/internal/generator"
	"logsynth/internal/progress"
	"logsynth/internal/ratelimit"
	"logsynth/internal/runner"
	"logsynth/internal/sink"
	"logsynth/internal/template"
)

const (
	// defaultRunDuration stands in for "until interrupted".
	defaultRunDuration = 24 * time.Hour
	// defaultParallelCount applies to parallel runs given neither a count
	// nor a duration.
	defaultParallelCount = 1000
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	Template     string
	Rate         float64
	Duration     string
	Count        int
	Output       string
	Corrupt      float64
	Seed         int64
	Format       string
	Burst        string
	Preview      bool
	MaxWriteRate float64
	Summary      string
}

// runSettings is the resolved, validated form of RunOptions.
type runSettings struct {
	Sources      []string
	Rate         float64
	Duration     *time.Duration
	Count        *int
	Output       string
	Corrupt      float64
	Seed         *int64
	Format       string
	Burst        ratelimit.Schedule
	MaxWriteRate float64
	Summary      string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [TEMPLATE...]",
		Short: "Generate synthetic logs from templates",
		Long: `Generate synthetic log lines from one or more templates.

Each TEMPLATE is a preset name or a path to a template YAML file. With more
than one template every template runs as its own stream and the rate and
count are split evenly between them.`,
		Example: `  logsynth run nginx --rate 50 --duration 30s
  logsynth run nginx syslog --count 1000 -o /tmp/mixed.log
  logsynth run app-json --burst 100:5s,10:25s --duration 2m`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, rootOpts, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Template, "template", "t", "", "path to a template YAML file")
	f.Float64VarP(&opts.Rate, "rate", "r", 0, "lines per second (default from config)")
	f.StringVarP(&opts.Duration, "duration", "d", "", "run time, e.g. 30s, 5m, 1h")
	f.IntVarP(&opts.Count, "count", "c", 0, "number of lines to generate")
	f.StringVarP(&opts.Output, "output", "o", "", "file path, tcp://host:port, udp://host:port or http(s)://url (default stdout)")
	f.Float64Var(&opts.Corrupt, "corrupt", 0, "percentage of lines to corrupt (0-100)")
	f.Int64VarP(&opts.Seed, "seed", "s", 0, "random seed for reproducible output")
	f.StringVarP(&opts.Format, "format", "f", "", "output format override: plain, json, logfmt")
	f.StringVarP(&opts.Burst, "burst", "b", "", "burst pattern, e.g. 100:5s,10:25s (requires --duration)")
	f.BoolVarP(&opts.Preview, "preview", "p", false, "print one sample line and exit")
	f.Float64Var(&opts.MaxWriteRate, "max-write-rate", 0, "ceiling on sink writes per second (0 = none)")
	f.StringVar(&opts.Summary, "summary", "text", "run summary format (text|json)")

	return cmd
}

func runRun(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions, args []string) error {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return usageError(err)
	}

	settings, err := resolveRunSettings(cmd, opts, cfg, args)
	if err != nil {
		return usageError(err)
	}

	if rootOpts.Verbose {
		printer := rubberneck.NewPrinter(log.Infof, rubberneck.NoAddLineFeed)
		printer.Print(cfg.Defaults)
		printer.Print(*opts)
	}

	if opts.Preview {
		return runPreview(cmd.OutOrStdout(), settings)
	}

	gens, err := buildStreams(settings)
	if err != nil {
		return usageError(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := sink.Open(settings.Output, sink.Options{Verbose: rootOpts.Verbose})
	if err != nil {
		return usageError(err)
	}
	if settings.MaxWriteRate > 0 {
		out = sink.Throttle(ctx, out, settings.MaxWriteRate)
	}
	coll := collector.New(out, core.RealClock{})
	defer func() {
		if err := coll.Close(); err != nil {
			log.WithError(err).Warn("closing output")
		}
	}()

	prog := progress.NewProgress(coll, !rootOpts.Quiet && !sink.IsStdout(settings.Output))
	prog.SetOutput(cmd.ErrOrStderr())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			prog.Printf("Received interrupt signal, stopping streams...")
		case <-done:
		}
	}()

	var (
		streams []collector.StreamSummary
		dropped int
		runErr  error
	)
	if len(gens) == 1 {
		streams, runErr = runSingle(ctx, coll, prog, settings, gens[0])
	} else {
		streams, dropped, runErr = runParallel(ctx, coll, prog, settings, gens)
	}
	prog.Stop()

	if streams == nil && runErr != nil {
		return usageError(runErr)
	}

	summary := collector.NewSummary(coll.Snapshot(), streams, ctx.Err() != nil)
	summary.Dropped = dropped
	printSummary(summaryWriter(cmd, settings.Output), settings.Summary, summary)

	if summary.Failed() {
		return &ExitError{Code: ExitStreamFailed, Err: runErr}
	}
	return nil
}

func resolveRunSettings(cmd *cobra.Command, opts *RunOptions, cfg *config.Config, args []string) (*runSettings, error) {
	s := &runSettings{
		Rate:         cfg.Defaults.Rate,
		Output:       cfg.Defaults.Output,
		Corrupt:      opts.Corrupt,
		Format:       opts.Format,
		MaxWriteRate: opts.MaxWriteRate,
		Summary:      opts.Summary,
	}

	if opts.Template != "" {
		s.Sources = append(s.Sources, opts.Template)
	}
	s.Sources = append(s.Sources, args...)
	if len(s.Sources) == 0 {
		return nil, fmt.Errorf("%w: no template specified, use a preset name or --template", core.ErrInvalidConfig)
	}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		s.Rate = opts.Rate
	}
	if err := ratelimit.ValidateRate(s.Rate); err != nil {
		return nil, err
	}
	if flags.Changed("output") {
		s.Output = opts.Output
	}
	if flags.Changed("seed") {
		seed := opts.Seed
		s.Seed = &seed
	}
	if flags.Changed("count") {
		if opts.Count < 0 {
			return nil, fmt.Errorf("%w: count must be >= 0, got %d", core.ErrInvalidConfig, opts.Count)
		}
		count := opts.Count
		s.Count = &count
	}
	if opts.Duration != "" {
		d, err := ratelimit.ParseDuration(opts.Duration)
		if err != nil {
			return nil, err
		}
		s.Duration = &d
	}
	if s.Corrupt < 0 || s.Corrupt > 100 {
		return nil, fmt.Errorf("%w: --corrupt must be between 0 and 100, got %v", core.ErrInvalidConfig, s.Corrupt)
	}
	if s.MaxWriteRate < 0 {
		return nil, fmt.Errorf("%w: --max-write-rate must be >= 0, got %v", core.ErrInvalidConfig, s.MaxWriteRate)
	}
	if s.Summary != "text" && s.Summary != "json" {
		return nil, fmt.Errorf("%w: --summary must be 'text' or 'json', got %q", core.ErrInvalidConfig, s.Summary)
	}

	if opts.Burst != "" {
		if len(s.Sources) > 1 {
			return nil, fmt.Errorf("%w: --burst is not supported with parallel streams", core.ErrInvalidConfig)
		}
		if s.Duration == nil {
			return nil, fmt.Errorf("%w: --burst requires --duration", core.ErrInvalidConfig)
		}
		schedule, err := ratelimit.ParseBurst(opts.Burst)
		if err != nil {
			return nil, err
		}
		s.Burst = schedule
	}
	return s, nil
}

// stream is one template ready to run.
type stream struct {
	name      string
	generator *generator.Generator
	corruptor *corrupt.Corruptor
}

func (s stream) mutator() core.Mutator {
	if s.corruptor == nil {
		return nil
	}
	return s.corruptor
}

// buildStreams loads every source and gives each its own generator and
// corruptor. Stream i of a seeded run is seeded with seed+i.
func buildStreams(s *runSettings) ([]stream, error) {
	streams := make([]stream, 0, len(s.Sources))
	for i, src := range s.Sources {
		tmpl, err := template.Load(src)
		if err != nil {
			return nil, err
		}
		var seed *int64
		if s.Seed != nil {
			v := *s.Seed + int64(i)
			seed = &v
		}
		gen, err := generator.New(tmpl, generator.Options{Format: s.Format, Seed: seed})
		if err != nil {
			return nil, err
		}
		corruptor, err := corrupt.New(s.Corrupt, seed)
		if err != nil {
			return nil, err
		}
		streams = append(streams, stream{name: tmpl.Name, generator: gen, corruptor: corruptor})
	}
	return streams, nil
}

func runPreview(w io.Writer, s *runSettings) error {
	streams, err := buildStreams(s)
	if err != nil {
		return usageError(err)
	}
	for _, st := range streams {
		line, err := st.generator.Preview()
		if err != nil {
			return usageError(fmt.Errorf("preview %s: %w", st.name, err))
		}
		if len(streams) > 1 {
			fmt.Fprintf(w, "# %s\n", st.name)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func runSingle(ctx context.Context, out core.Sink, prog *progress.Progress, s *runSettings, st stream) ([]collector.StreamSummary, error) {
	logger := log.WithField("stream", st.name)
	r := runner.NewRunner(st.generator, out, runner.Config{Mutator: st.mutator(), Logger: logger})

	var (
		emitted int
		err     error
	)
	prog.Start()
	switch {
	case s.Burst != nil:
		prog.Printf("logsynth starting: %q, burst %s, duration %v", st.name, s.Burst, *s.Duration)
		emitted, err = r.RunBurst(ctx, s.Burst, *s.Duration)
	case s.Duration != nil:
		prog.Printf("logsynth starting: %q, %v lines/sec, duration %v", st.name, s.Rate, *s.Duration)
		emitted, err = r.RunDuration(ctx, s.Rate, *s.Duration)
	case s.Count != nil:
		prog.Printf("logsynth starting: %q, %v lines/sec, %d lines", st.name, s.Rate, *s.Count)
		emitted, err = r.RunCount(ctx, s.Rate, *s.Count)
	default:
		prog.Printf("logsynth starting: %q, %v lines/sec, until interrupted", st.name, s.Rate)
		emitted, err = r.RunDuration(ctx, s.Rate, defaultRunDuration)
	}

	summary := collector.StreamSummary{Name: st.name, Emitted: emitted}
	if err != nil {
		if errors.Is(err, core.ErrInvalidConfig) {
			return nil, err
		}
		summary.Error = err.Error()
	}
	if n := st.corruptor.Applied(); n > 0 {
		logger.WithField("corrupted", n).Debug("corrupted lines")
	}
	return []collector.StreamSummary{summary}, err
}

func runParallel(ctx context.Context, out core.Sink, prog *progress.Progress, s *runSettings, streams []stream) ([]collector.StreamSummary, int, error) {
	sources := make([]coordinator.Source, len(streams))
	for i, st := range streams {
		sources[i] = coordinator.Source{Name: st.name, Generator: st.generator, Mutator: st.mutator()}
	}

	var plan coordinator.Plan
	switch {
	case s.Duration != nil:
		plan = coordinator.DurationPlan(s.Rate, *s.Duration)
	case s.Count != nil:
		plan = coordinator.CountPlan(s.Rate, *s.Count)
	default:
		plan = coordinator.CountPlan(s.Rate, defaultParallelCount)
	}

	prog.Printf("logsynth starting: %d streams, %v lines/sec total", len(streams), s.Rate)
	prog.Start()
	result, err := coordinator.NewCoordinator().Run(ctx, sources, out, plan)
	if result == nil {
		return nil, 0, err
	}

	summaries := make([]collector.StreamSummary, len(result.Streams))
	for i, sr := range result.Streams {
		summaries[i] = collector.StreamSummary{Name: sr.Name, Emitted: sr.Emitted}
		if sr.Err != nil {
			summaries[i].Error = sr.Err.Error()
		}
	}
	return summaries, result.Dropped, err
}

// summaryWriter keeps the summary off stdout when stdout carries the log
// lines.
func summaryWriter(cmd *cobra.Command, output string) io.Writer {
	if sink.IsStdout(output) {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func printSummary(w io.Writer, format string, s *collector.Summary) {
	if format == "json" {
		collector.FormatJSON(w, s)
		return
	}
	collector.FormatText(w, s)
}
