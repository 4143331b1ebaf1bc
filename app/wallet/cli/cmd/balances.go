package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "balances [account]",
	Short: "Print committed and available balances",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/v1/balances/list"
		if len(args) == 1 {
			path += "/" + args[0]
		}

		var bals balances
		if err := get(path, &bals); err != nil {
			return err
		}

		data := pterm.TableData{{"Account", "Balance", "Available"}}
		for _, b := range bals.Balances {
			data = append(data, []string{b.Account, b.Balance.String(), b.Available.String()})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}

		pterm.Info.Printfln("latest block %s, %d pending", short(bals.LatestBlock), bals.Uncommitted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}

// short trims a hash for display.
func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}
