package main

import (
	"errors"

	"github.com/spf13/cobra"

	"constellations/internal/config"
	"constellations/internal/logging"
)

const (
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks errors caused by bad input rather than the system.
var errUsage = errors.New("usage")

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagCatalog   string
	flagUser      string
	flagJSON      bool
)

// cfg is resolved by PersistentPreRunE for every subcommand.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "constellations",
	Short: "Weave map points into constellations and share them",
	Long: `constellations draws a catalog of places as stars on a terminal map.
Pick stars in order to weave a constellation, name it, and keep it.
Saved constellations can be shared as links or exported as images.

Running without a subcommand opens the map.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runWeave,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: platform data dir)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "point catalog file (default: bundled sample)")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "name printed on exported images")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.Flags().StringVar(&flagShare, "share", "", "open a shared constellation (token or link)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(weaveCmd)
	rootCmd.AddCommand(trailsCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(exportCmd)
}

// setup loads configuration and installs the CLI logger. The map installs
// its own file logger because the terminal belongs to the renderer.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == versionCmd.Name() {
		return nil
	}
	configDir, err := config.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return err
	}
	v, err := config.Load(configDir)
	if err != nil {
		return err
	}
	c, err := config.Resolve(v, configDir, flagDataDir)
	if err != nil {
		return err
	}
	if flagCatalog != "" {
		c.Catalog = flagCatalog
	}
	if flagUser != "" {
		c.User = flagUser
	}
	cfg = c
	logging.SetLogger(logging.NewText(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel)))
	return nil
}
