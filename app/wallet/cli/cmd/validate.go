package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every block for tampering",
	RunE: func(cmd *cobra.Command, args []string) error {
		var result validation
		if err := get("/v1/chain/validate", &result); err != nil {
			return err
		}

		if result.Valid {
			pterm.Success.Println("chain is valid")
			return nil
		}

		pterm.Error.Printfln("chain is invalid from block %d", result.FirstInvalid)

		data := pterm.TableData{{"Block", "Type", "Message"}}
		for _, e := range result.Errors {
			data = append(data, []string{pterm.Sprint(e.BlockIndex), pterm.LightRed(e.Kind), e.Message})
		}

		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
