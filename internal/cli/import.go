package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Load a movie CSV into the database, replacing existing rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := db.ImportCSV(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}

			fmt.Printf("Imported %d movies.\n", n)
			return nil
		},
	}
}
