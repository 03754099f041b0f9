package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tauraamui/mapinterp/pkg/video/videoprobe"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <video.mp4>",
	Short: "Print the codec, size and frame count of a generated video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := videoprobe.File(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	},
}
