package main

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fim/pkg/fim/output"
)

// formatter resolves the --format flag, falling back to the configured format.
func (a *app) formatter(cmd *cobra.Command) (output.Formatter, error) {
	name, _ := cmd.Flags().GetString("format")
	if name == "" {
		name = a.cfg.Format
	}
	return output.Get(strings.ToLower(name))
}

// render formats r and writes it to the command's output.
func (a *app) render(cmd *cobra.Command, f output.Formatter, r *output.Result) error {
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return err
	}
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

func formatList() string {
	return strings.Join(output.Available(), ", ")
}
