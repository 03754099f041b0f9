package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tauraamui/mapinterp/pkg/interp"
	"github.com/tauraamui/mapinterp/pkg/log"
)

var (
	weightsSeed            int64
	weightsTimeConditioned bool
)

var weightsCmd = &cobra.Command{
	Use:   "weights <path>",
	Short: "Write the seeded model's weights to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := interp.NewModel(weightsSeed, interp.DefaultWidths, weightsTimeConditioned)
		if err := interp.SaveWeights(afero.NewOsFs(), args[0], model); err != nil {
			return err
		}
		log.Info("Wrote model weights to %s", args[0])
		return nil
	},
}

func init() {
	weightsCmd.Flags().Int64Var(&weightsSeed, "seed", interp.DefaultSeed, "Seed for the weight initialisation")
	weightsCmd.Flags().BoolVar(&weightsTimeConditioned, "time-conditioned", false, "Write a model that takes the frame position as input")
}
