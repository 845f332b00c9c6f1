package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vitwit/tokensmith"
	"github.com/vitwit/tokensmith/coordinator"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/wallet"
)

// walletKeyEnv holds the paying wallet's private key: hex for EVM networks,
// base58 for Solana.
const walletKeyEnv = "TOKENSMITH_WALLET_KEY"

func NewGenerateCmd() *cobra.Command {
	var (
		form       = &formFlags{}
		network    string
		gatewayURL string
		outDir     string
		assumeYes  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Pay the fee and generate a token contract",
		Long: `Pay the generation fee from the wallet in ` + walletKeyEnv + ` and write the
generated contract to <Name>.sol.

Generation runs in-process with the configured model unless --gateway points
to a running tokensmith gateway. Every signature is confirmed on the terminal
unless --yes is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn := types.FeeNetwork(network)
			if fn == "" {
				fn = loadedConfig.Payment.DefaultNetwork
			}
			return runGenerate(cmd, form, generateOptions{
				network:    fn,
				gatewayURL: gatewayURL,
				outDir:     outDir,
				assumeYes:  assumeYes,
			})
		},
	}

	form.register(cmd)
	cmd.Flags().StringVarP(&network, "network", "n", "", "Fee network to pay on (default from config)")
	cmd.Flags().StringVar(&gatewayURL, "gateway", "", "Base URL of a running gateway")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for the generated contract")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Approve signatures without asking")

	return cmd
}

type generateOptions struct {
	network    types.FeeNetwork
	gatewayURL string
	outDir     string
	assumeYes  bool
}

func runGenerate(cmd *cobra.Command, form *formFlags, opts generateOptions) error {
	cfg := loadedConfig
	out := cmd.OutOrStdout()

	info, err := types.LookupNetwork(opts.network)
	if err != nil {
		return err
	}
	key := os.Getenv(walletKeyEnv)
	if key == "" {
		return fmt.Errorf("%w: set %s to the paying wallet's private key", types.ErrNotConnected, walletKeyEnv)
	}

	log, err := newLogger()
	if err != nil {
		return err
	}

	ts, err := tokensmith.New(cfg, tokensmith.WithLogger(log))
	if err != nil {
		return err
	}
	defer ts.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	confirm := newConfirmFunc(opts.assumeYes, info, out)
	session, disconnect, err := connect(ctx, ts, info, key, confirm)
	if err != nil {
		return err
	}
	defer disconnect()

	fmt.Fprintf(out, "Connected %s on %s\n", color.CyanString(session.Address()), info.Network)

	marketingWallet := ""
	if info.Family == types.ChainEVM {
		marketingWallet = session.Address()
	}
	spec, chain, err := form.spec(cfg.Generation.DefaultChain, marketingWallet)
	if err != nil {
		return err
	}

	coordOpts := []coordinator.Option{coordinator.WithObserver(progress(out))}
	var c *coordinator.Coordinator
	if opts.gatewayURL != "" {
		client := coordinator.NewHTTPGateway(opts.gatewayURL)
		coordOpts = append(coordOpts,
			coordinator.WithLogger(log),
			coordinator.WithTreasury(ts.Oracle().Treasury(info.Network)),
		)
		c = coordinator.New(session, client, client, coordOpts...)
	} else {
		c = ts.NewCoordinator(session, coordOpts...)
	}

	if quote, err := c.LoadQuote(ctx); err == nil {
		fee := quote.Amount(spec.Type())
		if c.IsAdmin(quote) {
			fee = quote.Waived().Amount(spec.Type())
		}
		fmt.Fprintf(out, "Fee for a %s token: %s %s\n", spec.Type(), fee, quote.Currency)
	}

	res, err := c.Submit(ctx, coordinator.Submission{Spec: spec, Chain: chain})
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		fmt.Fprintln(out, color.RedString("Process Failed: %s", res.Message))
		return types.NewError(res.Code, res.Message, nil)
	}

	if res.FeesWaived {
		fmt.Fprintln(out, color.YellowString("%s", res.Message))
	}
	if res.Confirmation != nil {
		fmt.Fprintf(out, "Fee paid in transaction %s\n", res.Confirmation.TxHash)
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(opts.outDir, res.FileName)
	if err := os.WriteFile(path, []byte(res.SolidityCode), 0o644); err != nil {
		return fmt.Errorf("failed to write contract: %w", err)
	}
	fmt.Fprintln(out, color.GreenString("Wrote %s", path))
	return nil
}

// connect opens a wallet session of the network's family with key.
func connect(ctx context.Context, ts *tokensmith.Tokensmith, info types.NetworkInfo, key string, confirm wallet.ConfirmFunc) (wallet.Session, func(), error) {
	switch info.Family {
	case types.ChainEVM:
		signer, err := wallet.NewEVMKeySigner(key)
		if err != nil {
			return nil, nil, err
		}
		s, err := ts.NewEVMSession(info.Network)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Connect(ctx, wallet.NewConfirmingEVMSigner(signer, confirm)); err != nil {
			return nil, nil, err
		}
		return s, s.Disconnect, nil

	case types.ChainSolana:
		signer, err := wallet.NewSolanaKeySigner(key)
		if err != nil {
			return nil, nil, err
		}
		s, err := ts.NewSolanaSession(info.Network)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Connect(ctx, wallet.NewConfirmingSolanaSigner(signer, confirm)); err != nil {
			return nil, nil, err
		}
		return s, s.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unsupported chain family %q", info.Family)
	}
}

func progress(out io.Writer) coordinator.Observer {
	return func(t coordinator.Transition) {
		switch t.To {
		case coordinator.StatePaying:
			fmt.Fprintln(out, "Processing payment...")
		case coordinator.StateAwaitingConfirmation:
			fmt.Fprintf(out, "Waiting for confirmation of %s...\n", t.TxHash)
		case coordinator.StateGenerating:
			fmt.Fprintln(out, "Generating smart contract...")
		}
	}
}
