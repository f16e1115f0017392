package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of your identity key",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := passphrase()
			if err != nil {
				return err
			}
			fp, err := wire.Identities.FingerprintIdentity(pass)
			if err != nil {
				return err
			}
			fmt.Println(fp)
			return nil
		},
	}
}
