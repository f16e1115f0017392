package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hushwire/internal/domain"
)

// send <peer> <message>: encrypt, seal, and send a message to <peer>.
func sendCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt, seal, and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := passphrase()
			if err != nil {
				return err
			}
			peer := domain.Username(args[0])
			msg := []byte(args[1])

			if err := wire.Messages.Send(cmd.Context(), pass, domain.Username(username), peer, msg); err != nil {
				return err
			}
			fmt.Println("sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "your username (same as you registered with)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
