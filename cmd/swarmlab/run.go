package main

import (
	"github.com/spf13/cobra"

	"github.com/copyleftdev/swarmlab/internal/errors"
	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
)

func newRunCmd(opts *options) *cobra.Command {
	var algo string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one algorithm on one landscape",
		Long:  `Runs a single algorithm for the requested number of generations and writes its statistics as CSV.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.generations < 1 {
				return optimization.InvalidArgumentf("generations must be positive, got %d", opts.generations)
			}
			settings, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			if opts.settingsPath == "" || cmd.Flags().Changed("algorithm") {
				settings.Algorithm = algorithm.ID(algo)
			}

			sess, err := opts.newSession(settings)
			if err != nil {
				return err
			}
			stats, err := opts.run(cmd, sess)
			if err != nil {
				return errors.Wrap(err, "running").WithOperation("run")
			}
			logRun(opts.logger, settings.Algorithm, stats)
			return opts.export(cmd, sess)
		},
	}

	cmd.Flags().StringVarP(&algo, "algorithm", "a", string(algorithm.CuckooID), "Algorithm: cuckoo, pso, ga, sa, random")
	return cmd
}
