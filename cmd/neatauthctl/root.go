package main

import (
	"github.com/spf13/cobra"

	"neatauth/internal/config"
	"neatauth/internal/logging"
	"neatauth/pkg/neatauth"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the neatauth CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neatauthctl",
		Short: "neatauthctl - per-identity genome credential transforms",
		Long: `neatauthctl provisions a randomly generated neural network genome for
each identity and turns that identity's secrets into SHA-256 digests
by evaluating the network.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewProvisionCmd())
	cmd.AddCommand(NewTransformCmd())
	cmd.AddCommand(NewEnrollCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewActivationsCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// loadConfig reads --config, or the XDG config file when the flag is unset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	if path == "" {
		path = config.DefaultFile()
	}
	return config.Load(path, cmd.Flags())
}

// openClient builds and initializes a client. Callers close it.
func openClient(cmd *cobra.Command) (*neatauth.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.Setup(logging.Options{
		Service: "neatauthctl",
		Version: cmd.Root().Version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	client, err := neatauth.NewWithConfig(cfg, logger, nil)
	if err != nil {
		logging.LogError(cmd.Context(), logger, "build client", err)
		return nil, err
	}
	if err := client.Init(cmd.Context()); err != nil {
		_ = client.Close()
		logging.LogError(cmd.Context(), logger, "init store", err)
		return nil, err
	}
	return client, nil
}
