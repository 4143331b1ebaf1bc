package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the blocks in the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		var blocks []block
		if err := get("/v1/blocks/list", &blocks); err != nil {
			return err
		}

		data := pterm.TableData{{"Index", "Time", "Miner", "Difficulty", "Nonce", "Txs", "Hash", "Previous"}}
		for _, b := range blocks {
			data = append(data, []string{
				pterm.Sprint(b.Index),
				b.Time,
				b.MinedBy,
				pterm.Sprint(b.Difficulty),
				pterm.Sprint(b.Nonce),
				pterm.Sprint(len(b.Transactions)),
				short(b.Hash),
				short(b.PreviousHash),
			})
		}

		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}
