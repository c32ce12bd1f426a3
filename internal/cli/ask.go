package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalibr1/cinequery/internal/domain"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			question := strings.Join(args, " ")
			result, err := a.dispatcher.Run(cmd.Context(),
				domain.SessionKey{Channel: "cli", SenderID: "local"}, question)
			if err != nil {
				return err
			}

			fmt.Println(result.Reply)
			return nil
		},
	}
}
