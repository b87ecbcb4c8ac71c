// Package cmd implements procfleet's command-line interface: cobra commands
// parse arguments and delegate all orchestration to the fleet package, a
// "CLI -> facade -> library" split.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"procfleet/config"
)

var (
	configPath string
	profile    string
)

// Root builds the top-level "procfleet" cobra command.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "procfleet",
		Short: "Spawn and orchestrate fleets of child processes",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to procfleet.ini (default /etc/procfleet/procfleet.ini)")
	root.PersistentFlags().StringVar(&profile, "profile", "default", "configuration profile section to use")

	root.AddCommand(runCmd())
	root.AddCommand(historyCmd())
	return root
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "procfleet: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
