// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/powrace/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powrace/foundation/blockchain/state"
	"github.com/ardanlabs/powrace/foundation/events"
	"github.com/ardanlabs/powrace/foundation/nameservice"
	"github.com/ardanlabs/powrace/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *zap.SugaredLogger
	State      *state.State
	NS         *nameservice.NameService
	Evts       *events.Events
	MinerCount int
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:        cfg.Log,
		State:      cfg.State,
		NS:         cfg.NS,
		WS:         websocket.Upgrader{},
		Evts:       cfg.Evts,
		MinerCount: cfg.MinerCount,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/balances/list", pbl.Balances)
	app.Handle(http.MethodGet, version, "/balances/list/:account", pbl.Balances)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/list/:index", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/tx/proof/:block/:tx", pbl.TxProof)
	app.Handle(http.MethodGet, version, "/difficulty", pbl.Difficulty)
	app.Handle(http.MethodPost, version, "/difficulty", pbl.SetDifficulty)
	app.Handle(http.MethodPost, version, "/race/start", pbl.StartRace)
	app.Handle(http.MethodPost, version, "/race/cancel", pbl.CancelRace)
	app.Handle(http.MethodGet, version, "/race/status", pbl.RaceStatus)
	app.Handle(http.MethodGet, version, "/chain/validate", pbl.Validate)
	app.Handle(http.MethodPost, version, "/chain/reset", pbl.Reset)
	app.Handle(http.MethodPost, version, "/tamper/tx", pbl.TamperTx)
	app.Handle(http.MethodPost, version, "/tamper/timestamp", pbl.TamperTimestamp)
}
