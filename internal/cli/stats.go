package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.AggregateStats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Total movies: %d\n", stats.TotalMovies)
			fmt.Printf("Total votes:  %d\n", stats.TotalVotes)
			return nil
		},
	}
}
