package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalibr1/cinequery/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cinequery version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cinequery %s\n", version.Version)
		},
	}
}
