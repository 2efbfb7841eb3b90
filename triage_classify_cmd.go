package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"triage_server/adapter/out/extract"
	"triage_server/core/domain"
	"triage_server/core/service/classification"
	"triage_server/core/service/normalize"
	"triage_server/internal/bootstrap"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	produtivoColor   = color.New(color.FgGreen, color.Bold)
	improdutivoColor = color.New(color.FgYellow, color.Bold)
	labelColor       = color.New(color.FgCyan)
	dimColor         = color.New(color.Faint)
)

type classifyOptions struct {
	heuristic bool
	normalize bool
}

func classifyCmd() *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify one email from a file or stdin",
		Long: `Classify one email and print its category, confidence, signals and reply.
The file may be plain text or PDF. Without a file the text is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no text to classify")
			}
			return runClassify(cmd.Context(), cmd.OutOrStdout(), text, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.heuristic, "heuristic", false, "use the keyword heuristic only")
	cmd.Flags().BoolVar(&opts.normalize, "normalize", false, "normalize the text before classifying")

	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return extract.New().Extract(filepath.Base(args[0]), "", data)
}

func runClassify(ctx context.Context, w io.Writer, text string, opts classifyOptions) error {
	input := text
	if opts.normalize {
		input = normalize.New().Normalize(text)
	}

	var result domain.ClassificationResult
	var reply string

	if opts.heuristic {
		result = classification.ClassifyWithHeuristic(input)
		reply = classification.FallbackReply(result.Category)
	} else {
		// Logs go to stderr so stdout carries only the result.
		cfg, err := loadConfig("triage-cli", os.Stderr)
		if err != nil {
			return err
		}
		_, classifier := bootstrap.NewClassifier(cfg, nil)
		result = classifier.Classify(ctx, input)
		reply = classifier.GenerateReply(ctx, result.Category, text)
	}

	renderResult(w, result, reply)
	return nil
}

func renderResult(w io.Writer, result domain.ClassificationResult, reply string) {
	categoryColor := produtivoColor
	if result.Category == domain.CategoryImprodutivo {
		categoryColor = improdutivoColor
	}

	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Categoria: "), categoryColor.Sprint(result.Category))
	fmt.Fprintf(w, "%s %.1f%%\n", labelColor.Sprint("Confiança: "), result.Confidence*100)
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Origem:    "), result.Source)
	if result.FallbackReason != "" {
		fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Fallback:  "), dimColor.Sprint(result.FallbackReason))
	}
	if len(result.Signals) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Sinais:    "), dimColor.Sprint(strings.Join(result.Signals, ", ")))
	}
	fmt.Fprintf(w, "\n%s\n%s\n", labelColor.Sprint("Resposta sugerida:"), reply)
}
