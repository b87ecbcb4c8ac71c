package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"procfleet/ledger"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently recorded job runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			db, err := ledger.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.Recent(limit)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}

			for _, r := range runs {
				line := fmt.Sprintf("%s  %-8s  %s", r.StartTime.Format("2006-01-02 15:04:05"), r.Status, r.Path)
				if r.Status == "nonzero" {
					line += fmt.Sprintf(" (exit %d)", r.Code)
				} else if r.Status == "abnormal" {
					line += fmt.Sprintf(" (%s)", r.Detail)
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}
