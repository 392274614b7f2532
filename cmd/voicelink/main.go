package main

import (
	"fmt"
	"os"

	"voicelink/internal/config"
	"voicelink/internal/intent"
	"voicelink/internal/logging"
	"voicelink/internal/shortcut"
	"voicelink/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "voicelink",
	Short: "voicelink - voice shortcut registry and donation manager",
	Long: `voicelink manages app-defined voice-shortcut intents: it tracks which
intents already have a user-created shortcut and donates intents to the
platform's suggestion services.

The bundled local store is SQLite-backed, standing in for the host
platform's shortcut store during development.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openStore opens the configured local shortcut store.
func openStore() (*store.LocalStore, error) {
	return store.NewLocalStore(cfg.Store.Path, logger)
}

// newRegistry wires a registry over the local store, which serves as all
// three platform services.
func newRegistry(ls *store.LocalStore) *shortcut.Registry {
	return shortcut.NewRegistry(ls, ls, ls,
		shortcut.WithLogger(logger),
		shortcut.WithReloadTimeout(cfg.ReloadTimeout()),
		shortcut.WithDonationTimeout(cfg.DonationTimeout()))
}

// groupID resolves the donation group: explicit flag, configured prefix
// plus the kind identifier, or empty (the registry derives it).
func groupID(explicit string, in intent.Intent) string {
	if explicit != "" {
		return explicit
	}
	if cfg.Donation.GroupPrefix != "" {
		return cfg.Donation.GroupPrefix + "." + in.GroupID()
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "voicelink.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
