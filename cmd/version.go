package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptboard/promptboard/internal/config"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("Promptboard %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Addr: %s\n", cfg.Addr)
	fmt.Printf("  Flash model: %s\n", cfg.FlashModel)
	fmt.Printf("  Pro model: %s\n", cfg.ProModel)
	fmt.Printf("  Text-to-image model: %s\n", cfg.TextToImageModel)
	fmt.Printf("  Video model: %s\n", cfg.VideoModel)
	fmt.Printf("  Retry budget: %d attempts\n", cfg.GenMaxAttempts)
	fmt.Printf("  Session idle timeout: %s\n", cfg.SessionIdleTimeout)

	if cfg.HasAPIKey() {
		fmt.Println("  GEMINI_API_KEY: configured")
	} else {
		fmt.Println("  GEMINI_API_KEY: not set")
		fmt.Println()
		fmt.Println("Hint: set GEMINI_API_KEY, or store a key with: promptboard key set")
	}

	return nil
}
