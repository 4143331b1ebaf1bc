package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Print the transactions waiting to be mined",
	RunE: func(cmd *cobra.Command, args []string) error {
		var txs []tx
		if err := get("/v1/tx/uncommitted/list", &txs); err != nil {
			return err
		}

		if len(txs) == 0 {
			pterm.Info.Println("no pending transactions")
			return nil
		}

		data := pterm.TableData{{"#", "Sender", "Receiver", "Amount"}}
		for i, t := range txs {
			data = append(data, []string{pterm.Sprint(i), t.Sender, t.Receiver, t.Amount.String()})
		}

		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}
