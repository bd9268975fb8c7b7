package cmd

import (
	"fmt"
	"os"

	"invite-media/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "invite-media",
	Short: "Collect guest photos and videos for the invitation site",
	Long: `invite-media runs and talks to the invitation site's media service:

  - Serve the upload, guest lookup, RSVP and gallery endpoints
  - Upload photos and videos in small concurrent batches
  - Shrink large photos before they are sent
  - Browse the shared gallery and search the guest list

Example:
  invite-media serve
  invite-media upload ~/Pictures/wedding/*.jpg clip.mp4`,
	SilenceUsage: true,
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config file is optional for some commands (like help and serve)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// requireConfig returns the loaded configuration or a hint to run setup
func requireConfig() (*config.Config, error) {
	c := GetConfig()
	if c == nil || c.Service.Endpoint == "" {
		return nil, fmt.Errorf("config file not found. Run 'invite-media setup' first")
	}
	return c, nil
}
