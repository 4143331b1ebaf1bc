package cmd

import (
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	amount string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Queue a transfer between two roster members",
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return err
		}

		body := struct {
			From   string          `json:"from"`
			To     string          `json:"to"`
			Amount decimal.Decimal `json:"amount"`
		}{
			From:   from,
			To:     to,
			Amount: value,
		}

		var t tx
		if err := post("/v1/tx/submit", body, &t); err != nil {
			return err
		}

		pterm.Success.Printfln("%s -> %s %s queued", t.Sender, t.Receiver, t.Amount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Sender id or name.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Receiver id or name.")
	sendCmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount to send.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
