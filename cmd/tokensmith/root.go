package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
)

// Global flags
var (
	configPath string
	noColor    bool
	verbose    bool

	// loadedConfig is set by the root PersistentPreRunE.
	loadedConfig *types.Config
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokensmith",
		Short: "Generate Solidity token contracts behind an on-chain fee",
		Long: `tokensmith generates ERC-20 style Solidity contracts with a generative model.

A fee is paid in the native currency of a fee network (Solana or an EVM chain)
to the treasury before the contract is generated. The treasury wallet itself
generates for free.

Examples:
  # Run the generation gateway
  tokensmith serve --config tokensmith.toml

  # Show the fees of a network
  tokensmith prices --network fitochain

  # Pay and generate a contract
  TOKENSMITH_WALLET_KEY=... tokensmith generate --name "Test Token" --symbol TST --supply 1000000`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			cfg, err := utils.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			loadedConfig = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a TOML or JSON config file")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	cmd.AddCommand(
		NewServeCmd(),
		NewPricesCmd(),
		NewPromptCmd(),
		NewGenerateCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// newLogger builds the zap logger of the loaded config.
func newLogger() (logger.Logger, error) {
	return logger.NewZapLogger(loadedConfig.Logging)
}
