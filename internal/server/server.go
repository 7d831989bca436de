// Package server exposes the dispatcher over HTTP/JSON, mirroring the
// teacher's net/http + http.ServeMux routing (internal/server/handlers).
package server

import (
	"log"
	"net/http"
	"os"

	"github.com/auvious/janus-gateway/internal/dispatcher"
	"github.com/auvious/janus-gateway/internal/environment"
)

var defaultHTTPAddress = ":8088"

// StartWebServer builds the request mux and blocks serving HTTP.
func StartWebServer(ctx *dispatcher.Context, d *dispatcher.Dispatcher) {
	mux := http.NewServeMux()
	RegisterHandlers(mux, ctx, d)

	server := &http.Server{
		Handler: mux,
		Addr:    getHTTPAddress(),
	}

	log.Println("server.StartWebServer: listening on", getHTTPAddress())
	log.Fatal(server.ListenAndServe())
}

func getHTTPAddress() string {
	if address := os.Getenv(environment.HTTPAddress); address != "" {
		return address
	}
	return defaultHTTPAddress
}
