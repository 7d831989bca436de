package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/auvious/janus-gateway/internal/dispatcher"
	"github.com/auvious/janus-gateway/internal/protocol"
	"github.com/auvious/janus-gateway/internal/session"
)

// RegisterHandlers wires the two-step session/message surface onto mux:
// POST /session allocates a handle, POST /session/{handle} submits a
// control message to the dispatcher (§4.4, §6).
func RegisterHandlers(mux *http.ServeMux, ctx *dispatcher.Context, d *dispatcher.Dispatcher) {
	mux.HandleFunc("/session", sessionHandler(ctx))
	mux.HandleFunc("/session/", messageHandler(ctx, d))
}

// sessionHandler allocates a fresh Session and its handle, matching the
// original plugin's "attach" step that precedes any recordplay request.
func sessionHandler(ctx *dispatcher.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		handle := uuid.New().String()
		sess := session.New(handle, nil)
		ctx.Sessions.Insert(sess)

		writeJSON(w, map[string]string{"handle": handle})
	}
}

func messageHandler(ctx *dispatcher.Context, d *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		handle := r.URL.Path[len("/session/"):]
		if _, ok := ctx.Sessions.Get(handle); !ok {
			writeJSON(w, protocol.ErrResponse(protocol.NewError(protocol.Unknown, "no session for handle")))
			return
		}

		var req protocol.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				writeJSON(w, protocol.ErrResponse(protocol.NewError(protocol.InvalidElement, err.Error())))
				return
			}
			writeJSON(w, protocol.ErrResponse(protocol.NewError(protocol.InvalidJSON, err.Error())))
			return
		}

		req.SetHandle(handle)
		writeJSON(w, d.Submit(&req))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httpError(w, err.Error(), http.StatusInternalServerError)
	}
}

// httpError logs the failing request surface before writing the HTTP
// error, so a misbehaving client shows up in the dispatcher's own log
// stream rather than only as a response code.
func httpError(w http.ResponseWriter, reason string, code int) {
	log.Println("server: request failed:", reason)
	http.Error(w, reason, code)
}
