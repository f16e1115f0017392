package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hushwire/internal/domain"
)

// recv: fetch, open, and decrypt queued messages for --username.
func recvCmd() *cobra.Command {
	var username string
	var limit int

	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch and decrypt your queued messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := passphrase()
			if err != nil {
				return err
			}

			msgs, err := wire.Messages.Receive(cmd.Context(), pass, domain.Username(username), limit)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				marker := ""
				if m.AuthorVerified {
					marker = " *"
				}
				fmt.Printf("[%s%s] %s\n", m.From, marker, string(m.Plaintext))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "your username (same as you registered with)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max messages to fetch (0 = all)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
