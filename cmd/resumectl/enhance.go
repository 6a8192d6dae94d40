package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/llm"
	"resume-builder/internal/shared/config"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Enhance a résumé document with the configured model provider",
	Long:  "Sends the document to LLM_PROVIDER once and prints the enhanced document. The credential is read from the provider's API key variable.",
	RunE:  runEnhance,
}

var (
	enhanceInput    string
	enhanceOutput   string
	enhanceProvider string
	enhanceShowRaw  bool
)

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceInput, "file", "f", "", "Path to document JSON, or - for stdin (required)")
	enhanceCmd.Flags().StringVarP(&enhanceOutput, "out", "o", "", "Output file (default stdout)")
	enhanceCmd.Flags().StringVar(&enhanceProvider, "provider", "", "Override LLM_PROVIDER (deepseek, openai, gemini)")
	enhanceCmd.Flags().BoolVar(&enhanceShowRaw, "show-raw", false, "Print the raw model reply when it cannot be used")
	if err := enhanceCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	rootCmd.AddCommand(enhanceCmd)
}

func runEnhance(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(enhanceInput)
	if err != nil {
		return err
	}

	if enhanceProvider != "" {
		if err := os.Setenv("LLM_PROVIDER", enhanceProvider); err != nil {
			return err
		}
	}
	cfg := config.Load()
	gateway := bootstrap.NewGateway(cfg.LLM)

	res, err := gateway.Attempt(cmd.Context(), doc)
	if err != nil {
		if e, ok := llm.AsError(err); ok && enhanceShowRaw && e.Raw != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "raw reply:")
			fmt.Fprintln(cmd.ErrOrStderr(), e.Raw)
		}
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "provider=%s model=%s prompt_hash=%s\n", res.Provider, res.Model, res.PromptHash)

	out, err := json.MarshalIndent(res.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return writeOutput(enhanceOutput, append(out, '\n'))
}
