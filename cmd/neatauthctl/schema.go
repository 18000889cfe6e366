package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"neatauth/internal/nn"
	"neatauth/internal/storage"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of stored genome envelopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := storage.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

// NewActivationsCmd creates the activations subcommand.
func NewActivationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activations",
		Short: "List the activation functions genomes may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(nn.ListActivations(), "\n"))
			return err
		},
	}
}

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and flags are
merged. Secrets such as the redis password are omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != outputYAML && output != outputJSON {
				return fmt.Errorf("unsupported output format %q (want yaml or json)", output)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), output, cfg)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "output format (yaml, json)")
	return cmd
}
