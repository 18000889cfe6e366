package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

// NewInspectCmd creates the inspect subcommand.
func NewInspectCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect <identity>",
		Short: "Summarize an identity's stored genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputYAML && output != outputJSON {
				return fmt.Errorf("unsupported output format %q (want yaml or json)", output)
			}
			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			summary, err := client.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), output, summary)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "output format (yaml, json)")
	return cmd
}

func writeDocument(w io.Writer, format string, v any) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
