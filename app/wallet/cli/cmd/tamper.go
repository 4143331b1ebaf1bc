package cmd

import (
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	tamperBlock     int
	tamperTx        int
	tamperAmount    string
	tamperTimestamp int64
)

var tamperCmd = &cobra.Command{
	Use:   "tamper",
	Short: "Change a committed amount or timestamp without fixing the block",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tamperTimestamp != 0 {
			body := struct {
				Block     int   `json:"block"`
				Timestamp int64 `json:"timestamp"`
			}{
				Block:     tamperBlock,
				Timestamp: tamperTimestamp,
			}

			var resp struct {
				Old int64 `json:"old"`
				New int64 `json:"new"`
			}
			if err := post("/v1/tamper/timestamp", body, &resp); err != nil {
				return err
			}

			pterm.Warning.Printfln("block %d timestamp %d -> %d", tamperBlock, resp.Old, resp.New)
			return nil
		}

		value, err := decimal.NewFromString(tamperAmount)
		if err != nil {
			return err
		}

		body := struct {
			Block  int             `json:"block"`
			Tx     int             `json:"tx"`
			Amount decimal.Decimal `json:"amount"`
		}{
			Block:  tamperBlock,
			Tx:     tamperTx,
			Amount: value,
		}

		var resp struct {
			Old string `json:"old"`
			New string `json:"new"`
		}
		if err := post("/v1/tamper/tx", body, &resp); err != nil {
			return err
		}

		pterm.Warning.Printfln("block %d tx %d amount %s -> %s", tamperBlock, tamperTx, resp.Old, resp.New)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tamperCmd)
	tamperCmd.Flags().IntVarP(&tamperBlock, "block", "b", 1, "Index of the block to change.")
	tamperCmd.Flags().IntVarP(&tamperTx, "tx", "x", 0, "Index of the transaction to change.")
	tamperCmd.Flags().StringVarP(&tamperAmount, "amount", "a", "1000", "New amount for the transaction.")
	tamperCmd.Flags().Int64VarP(&tamperTimestamp, "timestamp", "s", 0, "New block timestamp in unix milliseconds, changes the timestamp instead of an amount.")
}
