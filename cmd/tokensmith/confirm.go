package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
	"github.com/vitwit/tokensmith/wallet"
	"golang.org/x/term"
)

var errNoTerminal = errors.New("cannot ask for a signature confirmation without a terminal; pass --yes to approve")

// newConfirmFunc asks on the terminal before every signature. A declined or
// interrupted prompt rejects the signature.
func newConfirmFunc(assumeYes bool, info types.NetworkInfo, out io.Writer) wallet.ConfirmFunc {
	return func(ctx context.Context, req wallet.SignRequest) (bool, error) {
		label := describeSignRequest(req, info)
		if assumeYes {
			fmt.Fprintln(out, label)
			return true, nil
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return false, errNoTerminal
		}

		p := promptui.Prompt{
			Label:     label,
			IsConfirm: true,
		}
		if _, err := p.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
}

func describeSignRequest(req wallet.SignRequest, info types.NetworkInfo) string {
	if req.Amount == nil {
		return fmt.Sprintf("Sign the fee waiver for this generation as %s", req.From)
	}
	return fmt.Sprintf("Send %s %s to %s on %s",
		utils.FromBaseUnits(req.Amount, info.Exponent), info.NativeSymbol, req.To, info.Network)
}
