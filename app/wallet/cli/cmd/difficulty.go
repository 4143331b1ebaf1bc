package cmd

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var difficultyCmd = &cobra.Command{
	Use:   "difficulty [value]",
	Short: "Print or change the difficulty for new blocks",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var d difficulty

		if len(args) == 0 {
			if err := get("/v1/difficulty", &d); err != nil {
				return err
			}
			pterm.Info.Printfln("difficulty %d (range %d-%d)", d.Difficulty, d.Min, d.Max)
			return nil
		}

		value, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}

		body := struct {
			Difficulty int `json:"difficulty"`
		}{
			Difficulty: value,
		}
		if err := post("/v1/difficulty", body, &d); err != nil {
			return err
		}

		pterm.Success.Printfln("difficulty set to %d", d.Difficulty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(difficultyCmd)
}
