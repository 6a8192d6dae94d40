package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"resume-builder/resume/model"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the sample résumé document",
	RunE:  runSample,
}

var (
	sampleBlank  bool
	sampleOutput string
)

func init() {
	sampleCmd.Flags().BoolVar(&sampleBlank, "blank", false, "Print a blank document instead")
	sampleCmd.Flags().StringVarP(&sampleOutput, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(_ *cobra.Command, _ []string) error {
	doc := model.Sample()
	if sampleBlank {
		doc = model.Blank()
	}
	out, err := json.MarshalIndent(doc.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return writeOutput(sampleOutput, append(out, '\n'))
}
