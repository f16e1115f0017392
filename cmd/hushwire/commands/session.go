package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hushwire/internal/domain"
)

// sessionCmd performs the prekey handshake against a peer's bundle and
// persists a new session for future messaging.
func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session <peer>",
		Short: "Establish a secure session with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := passphrase()
			if err != nil {
				return err
			}
			peer := domain.Username(args[0])

			sess, err := wire.Sessions.InitiateSession(cmd.Context(), pass, peer)
			if err != nil {
				return errors.Wrapf(err, "starting session with %q", peer)
			}
			fmt.Printf("Session created with %s (signed prekey %s).\n", peer, sess.SignedPreKeyID)
			return nil
		},
	}
}
