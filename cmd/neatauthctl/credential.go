package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"neatauth/pkg/neatauth"
)

var errVerifyFailed = errors.New("verification failed")

// NewProvisionCmd creates the provision subcommand.
func NewProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision [identity]",
		Short: "Create and store a genome for an identity",
		Long: `Create a genome for the identity and store it, replacing any genome
already stored for it. A random UUID identity is generated when none is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := neatauth.NewIdentity()
			if len(args) == 1 {
				identity = args[0]
			}

			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			if err := client.Provision(cmd.Context(), identity); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "provisioned identity=%s\n", identity)
			return nil
		},
	}
}

// NewTransformCmd creates the transform subcommand.
func NewTransformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform <identity>",
		Short: "Print the digest of a secret under an identity's genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			digest, err := client.Transform(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}
	addSecretFlag(cmd)
	return cmd
}

// NewEnrollCmd creates the enroll subcommand.
func NewEnrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll <identity>",
		Short: "Provision an identity and print the digest of its secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			digest, err := client.Enroll(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enrolled identity=%s digest=%s\n", args[0], digest)
			return nil
		},
	}
	addSecretFlag(cmd)
	return cmd
}

// NewVerifyCmd creates the verify subcommand. A mismatch exits non-zero.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <identity> <digest>",
		Short: "Check a secret against a stored digest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			match, err := client.Verify(cmd.Context(), args[0], secret, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified identity=%s match=%t\n", args[0], match)
			if !match {
				return errVerifyFailed
			}
			return nil
		},
	}
	addSecretFlag(cmd)
	return cmd
}

// NewDeleteCmd creates the delete subcommand.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <identity>",
		Short: "Remove an identity's genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted identity=%s\n", args[0])
			return nil
		},
	}
}
