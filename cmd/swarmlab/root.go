package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/swarmlab/internal/errors"
	"github.com/copyleftdev/swarmlab/internal/logging"
	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
	"github.com/copyleftdev/swarmlab/internal/sandbox"
)

// options holds the flags shared by every subcommand.
type options struct {
	logLevel  string
	logFormat string

	settingsPath string
	landscape    string
	popSize      int
	seed         uint32
	epsilon      float64
	generations  int
	outPath      string

	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "swarmlab",
		Short: "Headless runs of the swarmlab optimization sandbox",
		Long: `swarmlab runs metaheuristic optimizers (cuckoo search, particle swarm,
genetic algorithm, simulated annealing, random search) against classic 2-D
test landscapes and exports per-generation statistics as CSV.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewLogger(&logging.Config{
				Level:  opts.logLevel,
				Format: opts.logFormat,
				Output: "stderr",
			})
			if err != nil {
				return errors.Wrap(err, "initializing logger")
			}
			opts.logger = logger.WithField("command", cmd.Name())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format (json, text)")
	flags.StringVar(&opts.settingsPath, "settings", "", "JSON settings file applied before the other flags")
	flags.StringVar(&opts.landscape, "landscape", string(landscape.AckleyID), "Landscape: ackley, rosenbrock, rastrigin, sphere, schwefel")
	flags.IntVar(&opts.popSize, "pop", 50, "Population size")
	flags.Uint32Var(&opts.seed, "seed", 12345, "Random seed")
	flags.Float64Var(&opts.epsilon, "epsilon", 0.1, "Success threshold on |fitness|")
	flags.IntVarP(&opts.generations, "generations", "n", 100, "Generations per run")
	flags.StringVarP(&opts.outPath, "out", "o", "-", "CSV output path, - for stdout")

	root.AddCommand(newRunCmd(opts), newCompareCmd(opts))
	return root
}

// settings builds session settings from the optional settings file
// overlaid with every flag the user set explicitly.
func (o *options) settings(cmd *cobra.Command) (sandbox.Settings, error) {
	s := sandbox.DefaultSettings()
	if o.settingsPath != "" {
		data, err := os.ReadFile(o.settingsPath)
		if err != nil {
			return s, errors.Wrapf(err, "reading settings %s", o.settingsPath)
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return s, errors.Wrapf(err, "parsing settings %s", o.settingsPath)
		}
	}

	flags := cmd.Flags()
	if o.settingsPath == "" || flags.Changed("landscape") {
		s.Landscape = landscape.ID(o.landscape)
	}
	if o.settingsPath == "" || flags.Changed("pop") {
		s.Algorithms.PopSize = o.popSize
	}
	if o.settingsPath == "" || flags.Changed("seed") {
		s.Seed = o.seed
	}
	if o.settingsPath == "" || flags.Changed("epsilon") {
		s.Epsilon = o.epsilon
	}
	return s, nil
}

func (o *options) newSession(s sandbox.Settings) (*sandbox.Session, error) {
	return sandbox.New(s, sandbox.WithLogger(logging.NewZapLogger(o.logger)))
}

// run steps the session for the requested generations. A configured
// generation limit ends the run early without failing it.
func (o *options) run(cmd *cobra.Command, sess *sandbox.Session) ([]sandbox.GenerationStats, error) {
	stats, err := sess.Run(cmd.Context(), o.generations)
	if errors.Is(err, sandbox.ErrGenerationLimit) {
		o.logger.Warn("Generation limit reached", map[string]interface{}{
			"limit": sess.Settings().MaxGenerations,
		})
		return stats, nil
	}
	return stats, err
}

// output returns the CSV destination and a func that closes it.
func (o *options) output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if o.outPath == "" || o.outPath == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(o.outPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating %s", o.outPath)
	}
	return f, f.Close, nil
}

// export writes the session's runs as CSV.
func (o *options) export(cmd *cobra.Command, sess *sandbox.Session) error {
	w, closeFn, err := o.output(cmd)
	if err != nil {
		return err
	}
	if err := sess.ExportCSV(w); err != nil {
		_ = closeFn()
		return errors.Wrap(err, "writing csv").WithOperation("export")
	}
	if err := closeFn(); err != nil {
		return errors.Wrap(err, "closing output").WithOperation("export")
	}
	if o.outPath != "" && o.outPath != "-" {
		o.logger.Info("Wrote CSV", map[string]interface{}{"path": o.outPath, "runs": len(sess.Runs())})
	}
	return nil
}

func logRun(logger *logging.Logger, id algorithm.ID, stats []sandbox.GenerationStats) {
	if len(stats) == 0 {
		return
	}
	last := stats[len(stats)-1]
	logger.Info("Run complete", map[string]interface{}{
		"algorithm":    id,
		"generations":  last.Generation,
		"best":         last.Best,
		"avg":          last.Avg,
		"success_rate": last.SuccessRate,
	})
}
