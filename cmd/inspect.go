package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h2steel/flexbatch/config"
	"github.com/h2steel/flexbatch/core/schedule"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build the model and print its dimensions without solving",
	RunE:  inspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	params, err := config.LoadPlant(cfg)
	if err != nil {
		return fmt.Errorf("plant: %w", err)
	}
	kind, err := schedule.ParseObjective(cfg.Objective)
	if err != nil {
		return err
	}
	prob, err := schedule.Build(params, kind)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "objective:   %s\n", prob.Objective)
	fmt.Fprintf(out, "horizon:     %d steps of %.2f h\n", prob.Horizon, prob.DeltaHours)
	fmt.Fprintf(out, "units:       %d\n", len(params.Units))
	fmt.Fprintf(out, "variables:   %d\n", prob.Model.NumVars())
	fmt.Fprintf(out, "constraints: %d\n", prob.Model.NumConstraints())
	return nil
}
