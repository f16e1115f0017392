package commands

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"hushwire/internal/app"
)

var wire *app.Wire

// Execute builds the root command and runs it.
func Execute() error {
	root := &cobra.Command{
		Use:           "hushwire",
		Short:         "End-to-end encrypted messaging with sealed sender",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool("verbose") {
				jww.SetStdoutThreshold(jww.LevelInfo)
			}

			home := viper.GetString("home")
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".hushwire")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			wire = app.NewWire(app.Config{
				Home:     home,
				RelayURL: viper.GetString("relay"),
			})
			return nil
		},
	}

	root.PersistentFlags().String("home", "", "config dir (default ~/.hushwire)")
	root.PersistentFlags().StringP("passphrase", "p", "", "passphrase protecting the identity keys")
	root.PersistentFlags().String("relay", "http://127.0.0.1:8080", "relay base URL")
	root.PersistentFlags().Bool("verbose", false, "enable info logging")

	_ = viper.BindPFlag("home", root.PersistentFlags().Lookup("home"))
	_ = viper.BindPFlag("passphrase", root.PersistentFlags().Lookup("passphrase"))
	_ = viper.BindPFlag("relay", root.PersistentFlags().Lookup("relay"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	viper.SetEnvPrefix("hushwire")
	viper.AutomaticEnv()

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		registerCmd(),
		sessionCmd(),
		sendCmd(),
		recvCmd(),
		resetCmd(),
	)
	return root.Execute()
}

// passphrase returns the configured passphrase or an error if unset.
func passphrase() (string, error) {
	p := viper.GetString("passphrase")
	if p == "" {
		return "", errors.New("a passphrase is required (--passphrase or HUSHWIRE_PASSPHRASE)")
	}
	return p, nil
}
