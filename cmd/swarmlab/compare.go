package main

import (
	"github.com/spf13/cobra"

	"github.com/copyleftdev/swarmlab/internal/errors"
	"github.com/copyleftdev/swarmlab/internal/optimization"
	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
)

func newCompareCmd(opts *options) *cobra.Command {
	var algos []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare several algorithms on one landscape",
		Long: `Runs each algorithm in turn from the same seed on the same landscape and
writes every run to a single CSV, distinguished by RunID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.generations < 1 {
				return optimization.InvalidArgumentf("generations must be positive, got %d", opts.generations)
			}
			if len(algos) == 0 {
				return optimization.InvalidArgumentf("at least one algorithm is required")
			}
			settings, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			settings.Algorithm = algorithm.ID(algos[0])

			sess, err := opts.newSession(settings)
			if err != nil {
				return err
			}
			sess.SetComparison(true)

			for i, raw := range algos {
				id := algorithm.ID(raw)
				if i > 0 {
					if err := sess.SwitchAlgorithm(id); err != nil {
						return err
					}
				}
				stats, err := opts.run(cmd, sess)
				if err != nil {
					return errors.Wrapf(err, "running %s", id).WithOperation("compare")
				}
				logRun(opts.logger, id, stats)
			}
			return opts.export(cmd, sess)
		},
	}

	defaults := make([]string, 0, len(algorithm.IDs()))
	for _, id := range algorithm.IDs() {
		defaults = append(defaults, string(id))
	}
	cmd.Flags().StringSliceVarP(&algos, "algorithms", "a", defaults, "Comma-separated algorithms to compare")
	return cmd
}
