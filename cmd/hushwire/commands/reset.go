package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hushwire/internal/domain"
)

// reset <peer>: clear the session and ratchet state for a peer. The next
// contact requires a fresh handshake.
func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <peer>",
		Short: "Tear down the session and ratchet state for a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.Username(args[0])
			if err := wire.Sessions.ResetSession(peer); err != nil {
				return err
			}
			fmt.Printf("Session with %s cleared.\n", peer)
			return nil
		},
	}
}
