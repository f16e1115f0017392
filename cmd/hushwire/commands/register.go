package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hushwire/internal/domain"
)

// register --username <name>: generate prekeys and publish the bundle.
func registerCmd() *cobra.Command {
	var username string
	var oneTimeCount int

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Generate prekeys and publish your bundle to the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := passphrase()
			if err != nil {
				return err
			}

			if _, _, err := wire.PreKeys.GenerateAndStorePreKeys(pass, oneTimeCount); err != nil {
				return err
			}
			bundle, err := wire.PreKeys.BuildPreKeyBundle(pass, domain.Username(username))
			if err != nil {
				return err
			}
			if err := wire.Relay.RegisterPreKeyBundle(cmd.Context(), bundle); err != nil {
				return err
			}
			fmt.Printf("Registered %s with %d one-time prekeys.\n", username, len(bundle.OneTimePreKeys))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username to register as")
	cmd.Flags().IntVar(&oneTimeCount, "one-time-keys", 20, "number of one-time prekeys to publish")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
