package main

import (
	"log"
	"time"

	"github.com/auvious/janus-gateway/internal/dispatcher"
	"github.com/auvious/janus-gateway/internal/environment"
	"github.com/auvious/janus-gateway/internal/server"
	"github.com/auvious/janus-gateway/internal/webrtc"
)

func main() {
	environment.LoadEnvironmentVariables()

	log.Println("Booting up janus-gateway recordplay", time.Now().Format("2006-01-02 15:04:05"))
	webrtc.Setup()

	ctx := dispatcher.NewContext(environment.RecordingsDir(), environment.EventsAreEnabled())
	d := dispatcher.New(ctx)
	d.Start()

	server.StartWebServer(ctx, d)
}
