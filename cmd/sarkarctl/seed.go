package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sarkar/internal/scheme/models"
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate and upsert schemes from a JSON file",
		Long: `Reads a JSON array of schemes, or an object with a "schemes" array, and
upserts them into the catalog. The whole file is rejected when any scheme
has an invalid rule set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			schemes, err := decodeSchemes(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			ctx, cancel, a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			defer a.Close()

			n, err := a.Schemes.Ingest(ctx, schemes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d schemes\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the schemes JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// decodeSchemes accepts either a bare array or {"schemes": [...]}.
func decodeSchemes(r io.Reader) ([]models.Scheme, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	var schemes []models.Scheme
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &schemes); err != nil {
			return nil, fmt.Errorf("decode schemes: %w", err)
		}
	} else {
		var wrapped struct {
			Schemes []models.Scheme `json:"schemes"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode schemes: %w", err)
		}
		schemes = wrapped.Schemes
	}
	if len(schemes) == 0 {
		return nil, fmt.Errorf("no schemes found")
	}
	return schemes, nil
}
