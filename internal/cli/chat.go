package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalibr1/cinequery/internal/domain"
)

const greeting = "Hello! How can I help you with the movie data today?"

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			key := domain.SessionKey{Channel: "cli", SenderID: "local"}

			fmt.Println(greeting)
			fmt.Println(`Type "exit" or press Ctrl-D to quit.`)
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				result, err := a.dispatcher.Run(cmd.Context(), key, line)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Println(result.Reply)
				fmt.Println()
			}
		},
	}
}
