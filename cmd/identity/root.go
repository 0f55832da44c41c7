package main

import (
	"github.com/spf13/cobra"

	"github.com/machwork/identity/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "identity",
	Short: "MachWork identity core: cuentas, sesiones, MFA y RBAC",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "ruta al config YAML (opcional)")
	rootCmd.AddCommand(serveCmd, migrateCmd, keysCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}
