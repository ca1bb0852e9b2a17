package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/kharcha/internal/cli"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/spf13/cobra"
)

func localeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale",
		Short: "Inspect and validate locale packs",
		Long: `A locale pack holds the categories, merchants, number words, amount
patterns and thresholds the extractor uses. Start from the built-in pack with
"kharcha locale dump", edit it, then point locale.path at the result.`,
	}

	cmd.AddCommand(localeDumpCmd())
	cmd.AddCommand(localeCheckCmd())

	return cmd
}

func localeDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [file]",
		Short: "Write the built-in locale pack to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := locale.DefaultYAML()
			if len(args) == 0 {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return fmt.Errorf("failed to write locale pack: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote built-in locale pack to "+args[0]))
			return err
		},
	}
}

func localeCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a locale pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := locale.Load(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"%s is valid: %d categories, %d merchants, %d patterns",
				pack.Name, len(pack.Categories), len(pack.Merchants), len(pack.Patterns))))
			return err
		},
	}
}
