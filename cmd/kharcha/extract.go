package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/kharcha/internal/cli"
	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/server"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	var (
		alternatives []string
		quality      string
		retryCount   int
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract an expense from one utterance",
		Long: `Extract an amount, category and merchant from a transcript.

With no text argument, reads one transcript per line from stdin until EOF.`,
		Example: `  kharcha extract "200 ka dosa khaya"
  kharcha extract "auto wale ko diye" --alt "auto wale ko pachaas diye"
  kharcha extract --json "bought new shoes for 500 rupees"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appOptions{audit: true})
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()

			if len(args) == 0 {
				return extractInteractive(ctx, a.engine, cmd.InOrStdin(), out, asJSON)
			}

			req := server.ExtractRequest{
				Text:             strings.Join(args, " "),
				AudioQualityHint: quality,
				Alternatives:     alternatives,
				RetryCount:       retryCount,
			}
			transcript, err := req.Transcript()
			if err != nil {
				return common.NewUserError(err.Error(), err)
			}

			return writeResult(out, a.engine.Extract(ctx, transcript), asJSON)
		},
	}

	cmd.Flags().StringArrayVar(&alternatives, "alt", nil, "alternative transcription, best first (repeatable)")
	cmd.Flags().StringVar(&quality, "quality", "", "audio quality hint (good, moderate, poor)")
	cmd.Flags().IntVar(&retryCount, "retry-count", 0, "how many times the user has already been asked to repeat")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func extractInteractive(ctx context.Context, e *engine.Engine, in io.Reader, out io.Writer, asJSON bool) error {
	reader := cli.NewLineReader(in)

	for {
		line, err := reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			continue
		}

		req := server.ExtractRequest{Text: line}
		transcript, err := req.Transcript()
		if err != nil {
			return err
		}
		if err := writeResult(out, e.Extract(ctx, transcript), asJSON); err != nil {
			return err
		}
	}
}

func writeResult(w io.Writer, result engine.Result, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(result)
	}
	_, err := fmt.Fprintln(w, cli.RenderResult(result))
	return err
}
