package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powrace/app/services/node/handlers"
	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/blockchain/genesis"
	"github.com/ardanlabs/powrace/foundation/blockchain/state"
	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
	"github.com/ardanlabs/powrace/foundation/events"
	"github.com/ardanlabs/powrace/foundation/nameservice"
	"go.uber.org/zap/zaptest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type node struct {
	t   *testing.T
	mux http.Handler
}

func newNode(t *testing.T) node {
	log := zaptest.NewLogger(t).Sugar()

	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := state.New(state.Config{
		Genesis:   gen,
		EvHandler: func(v string, args ...any) { log.Infof(v, args...) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	t.Cleanup(func() { st.Shutdown() })

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    make(chan os.Signal, 1),
		Log:         log,
		State:       st,
		NS:          nameservice.New(gen.Roster),
		Evts:        events.New(),
		CorsOrigins: []string{"*"},
		MinerCount:  3,
	})

	return node{t: t, mux: mux}
}

func (n node) do(method string, path string, body string, status int, resp any) {
	var r *http.Request
	switch body {
	case "":
		r = httptest.NewRequest(method, path, nil)
	default:
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()

	n.mux.ServeHTTP(w, r)

	if w.Code != status {
		n.t.Fatalf("\t%s\tShould receive a status code of %d for %s %s: got %d: %s", failed, status, method, path, w.Code, w.Body.String())
	}
	n.t.Logf("\t%s\tShould receive a status code of %d for %s %s.", success, status, method, path)

	if resp != nil {
		if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
			n.t.Fatalf("\t%s\tShould be able to unmarshal the response: %v", failed, err)
		}
	}
}

// =============================================================================

func TestRaceFlow(t *testing.T) {
	t.Log("Given the need to submit, mine and validate through the api.")
	{
		n := newNode(t)

		n.do(http.MethodPost, "/v1/race/start", "", http.StatusConflict, nil)
		n.do(http.MethodPost, "/v1/tx/submit", `{"from":"alice","to":"Bob","amount":"20"}`, http.StatusCreated, nil)
		n.do(http.MethodPost, "/v1/tx/submit", `{"from":"Alice","to":"Bob","amount":"31"}`, http.StatusBadRequest, nil)
		n.do(http.MethodPost, "/v1/tx/submit", `{"from":"Alice","to":"Bob","amount":"-1"}`, http.StatusBadRequest, nil)
		n.do(http.MethodPost, "/v1/tx/submit", `{"from":"Alice","to":"Alice","amount":"1"}`, http.StatusBadRequest, nil)

		var started struct {
			RaceID string   `json:"race_id"`
			Miners []string `json:"miners"`
		}
		n.do(http.MethodPost, "/v1/race/start", `{"miners":2}`, http.StatusAccepted, &started)
		if len(started.Miners) != 2 {
			t.Fatalf("\t%s\tShould race with 2 miners: got %v", failed, started.Miners)
		}
		t.Logf("\t%s\tShould race with 2 miners.", success)

		var status worker.Status
		deadline := time.Now().Add(10 * time.Second)
		for {
			n.do(http.MethodGet, "/v1/race/status", "", http.StatusOK, &status)
			if status.State == worker.StateCommitted || time.Now().After(deadline) {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if status.RaceID != started.RaceID || status.Winner == "" {
			t.Fatalf("\t%s\tShould finish the race with a winner: %+v", failed, status)
		}
		t.Logf("\t%s\tShould finish the race with a winner.", success)

		var blocks []struct {
			Index   uint64 `json:"index"`
			MinedBy string `json:"mined_by"`
		}
		n.do(http.MethodGet, "/v1/blocks/list", "", http.StatusOK, &blocks)
		if len(blocks) != 2 || blocks[1].MinedBy != status.Winner {
			t.Fatalf("\t%s\tShould list the mined block: %+v", failed, blocks)
		}
		t.Logf("\t%s\tShould list the mined block.", success)

		var proof struct {
			Proof    []string `json:"proof"`
			Verified bool     `json:"verified"`
		}
		n.do(http.MethodGet, "/v1/tx/proof/1/0", "", http.StatusOK, &proof)
		if !proof.Verified || len(proof.Proof) != 1 || !strings.HasPrefix(proof.Proof[0], "0x") {
			t.Fatalf("\t%s\tShould prove the transaction: %+v", failed, proof)
		}
		t.Logf("\t%s\tShould prove the transaction.", success)

		var result database.Result
		n.do(http.MethodGet, "/v1/chain/validate", "", http.StatusOK, &result)
		if !result.Valid {
			t.Fatalf("\t%s\tShould have a valid chain: %+v", failed, result)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)

		n.do(http.MethodPost, "/v1/tamper/tx", `{"block":0,"tx":0,"amount":"1"}`, http.StatusBadRequest, nil)
		n.do(http.MethodPost, "/v1/tamper/tx", `{"block":1,"tx":0,"amount":"1000"}`, http.StatusOK, nil)

		n.do(http.MethodGet, "/v1/chain/validate", "", http.StatusOK, &result)
		if result.Valid || result.FirstInvalid != 1 {
			t.Fatalf("\t%s\tShould detect the tampered block: %+v", failed, result)
		}
		t.Logf("\t%s\tShould detect the tampered block.", success)

		n.do(http.MethodPost, "/v1/chain/reset", "", http.StatusOK, nil)
		n.do(http.MethodGet, "/v1/blocks/list", "", http.StatusOK, &blocks)
		if len(blocks) != 1 {
			t.Fatalf("\t%s\tShould be back at genesis: got %d blocks", failed, len(blocks))
		}
		t.Logf("\t%s\tShould be back at genesis.", success)
	}
}

func TestDifficulty(t *testing.T) {
	t.Log("Given the need to change the difficulty through the api.")
	{
		n := newNode(t)

		var d struct {
			Difficulty int `json:"difficulty"`
		}
		n.do(http.MethodPost, "/v1/difficulty", `{"difficulty":9}`, http.StatusOK, &d)
		if d.Difficulty != genesis.MaxDifficulty {
			t.Fatalf("\t%s\tShould clamp the difficulty: got %d", failed, d.Difficulty)
		}
		t.Logf("\t%s\tShould clamp the difficulty.", success)

		n.do(http.MethodGet, "/v1/difficulty", "", http.StatusOK, &d)
		if d.Difficulty != genesis.MaxDifficulty {
			t.Fatalf("\t%s\tShould keep the difficulty: got %d", failed, d.Difficulty)
		}
		t.Logf("\t%s\tShould keep the difficulty.", success)

		n.do(http.MethodGet, "/v1/blocks/list/7", "", http.StatusNotFound, nil)
		n.do(http.MethodGet, "/v1/balances/list/zed", "", http.StatusNotFound, nil)
		n.do(http.MethodPost, "/v1/tx/submit", `{"from":"Alice"}`, http.StatusBadRequest, nil)
	}
}
