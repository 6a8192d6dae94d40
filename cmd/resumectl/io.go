package main

import (
	"fmt"
	"io"
	"os"

	"resume-builder/resume/model"
)

// readDocument loads and validates a document from path, or stdin for "-".
func readDocument(path string) (model.Document, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return model.Decode(raw)
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
