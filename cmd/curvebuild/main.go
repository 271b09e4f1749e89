package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/curvekit/cmd/curvebuild/internal/build"
	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/logging"
	"github.com/meenmo/curvekit/metrics"
	"github.com/meenmo/curvekit/termstructure"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := 0
	root := &cobra.Command{
		Use:           "curvebuild",
		Short:         "Bootstrap yield curves from market instruments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newBuildCommand(stdin, stdout, stderr, &code),
		newASWCommand(stdin, stdout, stderr, &code),
		newVersionCommand(stdout),
	)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "%v\n\n", err)
		fmt.Fprint(stderr, root.UsageString())
		return 2
	}
	return code
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(stdout, version)
		},
	}
}

// commonFlags are shared by the commands that read a JSON document.
type commonFlags struct {
	input   string
	config  string
	metrics bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "JSON input path (optional; if set, ignores stdin)")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "YAML configuration path")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Log bootstrap metrics to stderr")
}

// load reads the configuration, the logger and the raw input.
func (f *commonFlags) load(stdin io.Reader, stderr io.Writer) (config.Config, zerolog.Logger, []byte, error) {
	cfg := config.GetConfig()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, zerolog.Nop(), nil, err
		}
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return cfg, logger, nil, err
	}
	b, err := readInput(stdin, f.input)
	if err != nil {
		return cfg, logger, nil, fmt.Errorf("failed to read input: %v", err)
	}
	return cfg, logger, b, nil
}

func newBuildCommand(stdin io.Reader, stdout, stderr io.Writer, code *int) *cobra.Command {
	var flags commonFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Read a JSON instrument set, bootstrap, write calibrated pillars as JSON",
		Long: strings.Join([]string{
			"Usage:",
			"  curvebuild build < input.json",
			"  curvebuild build --input /path/to/input.json [--config curvekit.yaml]",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, logger, b, err := flags.load(stdin, stderr)
			if err != nil {
				*code = writeError(stdout, err)
				return nil
			}
			in, err := build.Decode(b)
			if err != nil {
				*code = writeError(stdout, err)
				return nil
			}

			reg := prometheus.NewRegistry()
			out, err := build.Run(in, build.Options{Config: cfg, Logger: logger, Recorder: metrics.New(reg)})
			if flags.metrics {
				logMetrics(logger, reg)
			}
			if err != nil {
				*code = writeError(stdout, err)
				return nil
			}
			b, err = build.Encode(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(b))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newASWCommand(stdin io.Reader, stdout, stderr io.Writer, code *int) *cobra.Command {
	var flags commonFlags
	cmd := &cobra.Command{
		Use:   "asw",
		Short: "Bootstrap a curve and compute par asset swap spreads of fixed-rate bonds",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, logger, b, err := flags.load(stdin, stderr)
			if err != nil {
				*code = writeASWError(stdout, err)
				return nil
			}
			in, err := build.DecodeASW(b)
			if err != nil {
				*code = writeASWError(stdout, err)
				return nil
			}

			reg := prometheus.NewRegistry()
			out, err := build.RunASW(in, build.Options{Config: cfg, Logger: logger, Recorder: metrics.New(reg)})
			if flags.metrics {
				logMetrics(logger, reg)
			}
			if err != nil {
				*code = writeASWError(stdout, err)
				return nil
			}
			b, err = build.EncodeASW(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(b))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// newLogger writes to the command's stderr unless the configuration names
// another output.
func newLogger(cfg config.LogConfig, stderr io.Writer) (zerolog.Logger, error) {
	if cfg.Output != "" && cfg.Output != "stderr" {
		return logging.New(cfg)
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %v", err)
	}
	return logging.NewWithWriter(cfg, stderr, level), nil
}

func logMetrics(logger zerolog.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			ev := logger.Info().Str("metric", f.GetName())
			for _, l := range m.GetLabel() {
				ev = ev.Str(l.GetName(), l.GetValue())
			}
			if c := m.GetCounter(); c != nil {
				ev = ev.Float64("value", c.GetValue())
			}
			if h := m.GetHistogram(); h != nil {
				ev = ev.Uint64("count", h.GetSampleCount()).Float64("sum", h.GetSampleSum())
			}
			ev.Msg("metric")
		}
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func writeError(stdout io.Writer, err error) int {
	b, _ := build.Encode(build.Output{
		Error:      err.Error(),
		ErrorClass: string(termstructure.Classify(err)),
	})
	fmt.Fprintln(stdout, string(b))
	return 1
}

func writeASWError(stdout io.Writer, err error) int {
	b, _ := build.EncodeASW(build.ASWOutput{
		Error:      err.Error(),
		ErrorClass: string(termstructure.Classify(err)),
	})
	fmt.Fprintln(stdout, string(b))
	return 1
}
