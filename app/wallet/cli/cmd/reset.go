package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Abort any race and put the ledger back to genesis",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := post("/v1/chain/reset", nil, nil); err != nil {
			return err
		}

		pterm.Success.Println("ledger reset to genesis")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
