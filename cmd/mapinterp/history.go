package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tauraamui/mapinterp/pkg/database"
	"github.com/tauraamui/mapinterp/pkg/history"
)

var (
	historyLimit int
	historyPurge bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded video generation runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyPurge {
			return purgeHistory(cmd.OutOrStdout())
		}

		db, err := database.Connect()
		if err != nil {
			return err
		}

		runs, err := history.NewRecorder(db, afero.NewOsFs()).List(historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tLAYER\tRANGE\tSTATUS\tFRAMES\tTOOK\tOUTPUT")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s - %s\t%s\t%d\t%s\t%s\n",
				r.UUID, r.CreatedAt.Format(time.RFC3339), r.Layer,
				r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339),
				r.Status, r.Frames, r.Duration().Round(time.Second), r.OutputPath,
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	historyCmd.Flags().BoolVar(&historyPurge, "purge", false, "Delete the run history database")
}

func purgeHistory(out io.Writer) error {
	path, err := database.Path()
	if err != nil {
		return err
	}
	if err := database.Destroy(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(out, "No run history to purge")
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "Removed %s\n", path)
	return nil
}
