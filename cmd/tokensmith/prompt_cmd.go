package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitwit/tokensmith/prompt"
)

func NewPromptCmd() *cobra.Command {
	form := &formFlags{}

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the model prompt for a token form",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, chain, err := form.spec(loadedConfig.Generation.DefaultChain, "")
			if err != nil {
				return err
			}
			text, err := prompt.Build(spec.Type(), spec, chain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	form.register(cmd)
	return cmd
}
