package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"resume-builder/resume/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a résumé document against the schema",
	RunE:  runValidate,
}

var validateInput string

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "file", "f", "", "Path to document JSON, or - for stdin (required)")
	if err := validateCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if _, err := readDocument(validateInput); err != nil {
		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			for _, fe := range schemaErr.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", fe.Field, fe.Message)
			}
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
