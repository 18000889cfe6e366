package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// readSecret returns --secret when given, otherwise the first line of stdin
// without its line ending. An empty secret is valid.
func readSecret(cmd *cobra.Command) ([]byte, error) {
	if cmd.Flags().Changed("secret") {
		secret, err := cmd.Flags().GetString("secret")
		if err != nil {
			return nil, err
		}
		return []byte(secret), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return []byte(line), nil
}

func addSecretFlag(cmd *cobra.Command) {
	cmd.Flags().String("secret", "", "secret to transform (read from stdin when omitted)")
}
