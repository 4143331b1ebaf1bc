package mid

import (
	"context"
	"errors"
	"net/http"

	v1 "github.com/ardanlabs/powrace/business/web/v1"
	"github.com/ardanlabs/powrace/foundation/blockchain/database"
	"github.com/ardanlabs/powrace/foundation/blockchain/state"
	"github.com/ardanlabs/powrace/foundation/blockchain/worker"
	"github.com/ardanlabs/powrace/foundation/validate"
	"github.com/ardanlabs/powrace/foundation/web"
	"go.uber.org/zap"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform way.
// Unexpected errors (status >= 500) are logged.
func Errors(log *zap.SugaredLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// If the context is missing this value, request the service
			// to be shutdown gracefully.
			v, err := web.GetValues(ctx)
			if err != nil {
				return web.NewShutdownError("web value missing from context")
			}

			// Run the next handler and catch any propagated error.
			if err := handler(ctx, w, r); err != nil {

				// Log the error.
				log.Errorw("ERROR", "traceid", v.TraceID, "ERROR", err)

				// Build out the error response.
				var er v1.ErrorResponse
				var status int
				switch {
				case validate.IsFieldErrors(err):
					fieldErrors := validate.GetFieldErrors(err)
					er = v1.ErrorResponse{
						Error:  "data validation error",
						Fields: fieldErrors.Fields(),
					}
					status = http.StatusBadRequest

				case v1.IsRequestError(err):
					reqErr := v1.GetRequestError(err)
					er = v1.ErrorResponse{
						Error: reqErr.Error(),
					}
					status = reqErr.Status

				default:
					status = statusOf(err)
					er = v1.ErrorResponse{
						Error: http.StatusText(status),
					}
					if status != http.StatusInternalServerError {
						er.Error = err.Error()
					}
				}

				// Respond with the error back to the client.
				if err := web.Respond(ctx, w, er, status); err != nil {
					return err
				}

				// If we receive the shutdown err we need to return it
				// back to the base handler to shut down the service.
				if web.IsShutdown(err) {
					return err
				}
			}

			// The error has been handled so we can stop propagating it.
			return nil
		}

		return h
	}

	return m
}

// statusOf maps the domain errors that reach the middleware unwrapped to
// their HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, state.ErrInvalidAmount),
		errors.Is(err, state.ErrInvalidTransaction),
		errors.Is(err, state.ErrInsufficientFunds),
		errors.Is(err, database.ErrInvalidTarget):
		return http.StatusBadRequest

	case errors.Is(err, database.ErrEmptyPendingPool),
		errors.Is(err, worker.ErrRaceAlreadyInProgress):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}
