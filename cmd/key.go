package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptboard/promptboard/internal/config"
	"github.com/promptboard/promptboard/internal/gemini"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored API credential",
}

var keySetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Validate and store an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		ok, err := gemini.ValidateKey(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("validating key: %w", err)
		}
		if !ok {
			return errors.New("the service rejected this key")
		}
		if err := config.SaveAPIKey(key); err != nil {
			return fmt.Errorf("storing key: %w", err)
		}
		fmt.Println("Key validated and stored.")
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a key is stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.LoadAPIKey()
		switch {
		case err == nil:
			fmt.Println("A key is stored.")
		case errors.Is(err, config.ErrMissingAPIKey):
			fmt.Println("No key stored.")
		default:
			return err
		}
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteAPIKey(); err != nil {
			return fmt.Errorf("removing key: %w", err)
		}
		fmt.Println("Key removed.")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyStatusCmd, keyClearCmd)
	rootCmd.AddCommand(keyCmd)
}
