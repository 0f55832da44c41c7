package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/machwork/identity/internal/jwt"
)

var (
	keysPrivOut string
	keysPubOut  string
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Genera una pareja de claves Ed25519 en PEM",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pair, err := jwt.GenerateKeyPair()
		if err != nil {
			return err
		}
		if err := pair.WritePEM(keysPrivOut, keysPubOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", keysPrivOut, keysPubOut)
		return nil
	},
}

func init() {
	keysCmd.Flags().StringVar(&keysPrivOut, "priv", "identity_ed25519.pem", "archivo de salida de la clave privada")
	keysCmd.Flags().StringVar(&keysPubOut, "pub", "identity_ed25519.pub.pem", "archivo de salida de la clave pública")
}
