package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"resume-builder/resume/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a résumé document",
	Long:  "Renders a document as json, text, html, docx or pdf. PDF output needs a local Chrome (CHROME_PATH).",
	RunE:  runPreview,
}

var (
	previewInput  string
	previewFormat string
	previewOutput string
)

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "file", "f", "", "Path to document JSON, or - for stdin (required)")
	previewCmd.Flags().StringVar(&previewFormat, "format", "text", "Output format: json, text, html, docx or pdf")
	previewCmd.Flags().StringVarP(&previewOutput, "out", "o", "", "Output file (default stdout)")
	if err := previewCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(previewInput)
	if err != nil {
		return err
	}

	var out []byte
	switch previewFormat {
	case "json":
		out, err = json.MarshalIndent(render.Project(doc), "", "  ")
	case "text":
		out = []byte(render.Text(doc))
	case "html":
		out, err = render.HTML(doc)
	case "docx":
		out, err = render.DOCX(doc)
	case "pdf":
		out, err = render.PDF(cmd.Context(), doc)
	default:
		return fmt.Errorf("unsupported format %q", previewFormat)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", previewFormat, err)
	}
	if (previewFormat == "docx" || previewFormat == "pdf") && previewOutput == "" {
		return fmt.Errorf("--out is required for %s output", previewFormat)
	}
	return writeOutput(previewOutput, out)
}
