package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var miners int

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Start a mining race and follow it until a block is committed",
	RunE: func(cmd *cobra.Command, args []string) error {

		// Connect to the event stream before starting so no event for
		// this race is missed.
		wsURL := "ws" + strings.TrimPrefix(strings.TrimSuffix(url, "/"), "http") + "/v1/events"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return fmt.Errorf("dialing events: %w", err)
		}
		defer conn.Close()

		evts := make(chan worker.Event, 1024)
		go func() {
			defer close(evts)
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}

				var ev worker.Event
				if err := json.Unmarshal(msg, &ev); err != nil {
					continue
				}
				evts <- ev
			}
		}()

		body := struct {
			Miners int `json:"miners,omitempty"`
		}{
			Miners: miners,
		}

		var started struct {
			RaceID string   `json:"race_id"`
			Miners []string `json:"miners"`
		}
		if err := post("/v1/race/start", body, &started); err != nil {
			return err
		}

		pterm.Info.Printfln("race %s started with %s", started.RaceID, strings.Join(started.Miners, ", "))

		area, err := pterm.DefaultArea.Start()
		if err != nil {
			return err
		}
		defer area.Stop()

		progress := make(map[string]worker.Event)
		for ev := range evts {
			if ev.RaceID != started.RaceID {
				continue
			}

			switch ev.Type {
			case worker.EventProgress:
				progress[ev.MinerID] = ev
				area.Update(render(progress))

			case worker.EventSolved:
				area.Update(render(progress))
				area.Stop()
				pterm.Success.Printfln("%s mined block %d in %s: nonce %d hash %s", ev.MinerID, ev.BlockIndex, ev.Elapsed, ev.Nonce, short(ev.Hash))
				return nil

			case worker.EventAborted:
				area.Stop()
				pterm.Warning.Printfln("race %s aborted", ev.RaceID)
				return nil
			}
		}

		return fmt.Errorf("event stream closed before race %s finished", started.RaceID)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().IntVarP(&miners, "miners", "m", 0, "Number of miners to race, the node default when zero.")
}

// render draws the latest attempts reported by every miner.
func render(progress map[string]worker.Event) string {
	names := make([]string, 0, len(progress))
	for name := range progress {
		names = append(names, name)
	}
	sort.Strings(names)

	data := pterm.TableData{{"Miner", "Attempts", "Nonce"}}
	for _, name := range names {
		ev := progress[name]
		data = append(data, []string{name, pterm.Sprint(ev.Attempts), pterm.Sprint(ev.CurrentNonce)})
	}

	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return s
}
