package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/kharcha/internal/cli"
	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/server"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// batchLine is one JSON line of batch output.
type batchLine struct {
	Error  string         `json:"error,omitempty"`
	Result *engine.Result `json:"result,omitempty"`
	Line   int            `json:"line"`
}

type batchStats struct {
	accepted int
	retry    int
	rejected int
	invalid  int
}

func batchCmd() *cobra.Command {
	var (
		outPath      string
		showProgress bool
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Extract expenses from a file of transcripts",
		Long: `Extract expenses from a file holding one transcript per line.

A line is either plain text or a JSON object with the same fields as the
HTTP API ("text", "alternatives", "audioQualityHint", "retryCount").
Results are written as JSON lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			hint := ""
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						slog.Warn("Failed to close output file", "path", outPath, "error", err)
					}
				}()
				out = f
				hint = "Results so far were written to " + outPath
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, cancel := handler.HandleInterrupts(cmd.Context(), hint)
			defer cancel()

			a, err := newApp(ctx, appOptions{audit: true})
			if err != nil {
				return err
			}
			defer a.close()

			var progress io.Writer
			if showProgress {
				progress = cmd.ErrOrStderr()
			}

			stats, err := runBatch(ctx, a.engine, data, out, progress)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("%d accepted, %d retry suggested, %d rejected, %d invalid",
				stats.accepted, stats.retry, stats.rejected, stats.invalid)
			if handler.WasInterrupted() {
				printStatus(cmd.ErrOrStderr(), cli.FormatWarning("Stopped early: "+summary))
				return ctx.Err()
			}
			printStatus(cmd.ErrOrStderr(), cli.FormatSuccess(summary))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write JSON lines to this file instead of stdout")
	cmd.Flags().BoolVar(&showProgress, "progress", true, "show a progress bar on stderr")

	return cmd
}

// runBatch extracts every non-blank line of data and writes one JSON line per
// input line to out. It stops between lines when ctx is canceled.
func runBatch(ctx context.Context, e *engine.Engine, data []byte, out io.Writer, progress io.Writer) (batchStats, error) {
	type input struct {
		text string
		line int
	}

	var inputs []input
	for i, raw := range strings.Split(string(data), "\n") {
		if text := strings.TrimSpace(raw); text != "" {
			inputs = append(inputs, input{text: text, line: i + 1})
		}
	}

	var stats batchStats
	enc := json.NewEncoder(out)

	var bar *progressbar.ProgressBar
	if progress != nil && len(inputs) > 0 {
		bar = cli.NewProgressBar(progress, len(inputs), "Extracting expenses...")
	}

	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}

		record := batchLine{Line: in.line}
		result, err := extractLine(ctx, e, in.text)
		if err != nil {
			record.Error = err.Error()
			stats.invalid++
		} else {
			record.Result = result
			stats.count(result.Status)
		}

		if err := enc.Encode(record); err != nil {
			return stats, fmt.Errorf("failed to write result for line %d: %w", in.line, err)
		}
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	return stats, nil
}

func (s *batchStats) count(status engine.Status) {
	switch status {
	case engine.StatusAccepted:
		s.accepted++
	case engine.StatusRetrySuggested:
		s.retry++
	default:
		s.rejected++
	}
}

func extractLine(ctx context.Context, e *engine.Engine, text string) (*engine.Result, error) {
	req, err := parseBatchLine(text)
	if err != nil {
		return nil, err
	}
	transcript, err := req.Transcript()
	if err != nil {
		return nil, err
	}
	result := e.Extract(ctx, transcript)
	return &result, nil
}

func parseBatchLine(text string) (server.ExtractRequest, error) {
	if !strings.HasPrefix(text, "{") {
		return server.ExtractRequest{Text: text}, nil
	}

	var req server.ExtractRequest
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON transcript: %w", err)
	}
	return req, nil
}

func printStatus(w io.Writer, msg string) {
	if _, err := fmt.Fprintln(w, msg); err != nil {
		slog.Warn("Failed to write status", "error", err)
	}
}
