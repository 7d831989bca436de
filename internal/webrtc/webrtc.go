// Package webrtc wires pion/webrtc into the record and play peer
// connections described in §4.4 and §4.6: codec registration, interceptor
// setup, and the SettingEngine built in settings.go.
package webrtc

import (
	"log"

	"github.com/pion/ice/v4"
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"

	"github.com/auvious/janus-gateway/internal/webrtc/codecs"
)

// API is the single pion/webrtc API instance shared by every record and
// play peer connection, built once at startup by Setup.
var API *webrtc.API

// Setup builds the shared MediaEngine, interceptor registry, and
// SettingEngine, matching the teacher's one-time Setup call.
func Setup() {
	mediaEngine := &webrtc.MediaEngine{}
	codecs.RegisterCodecs(mediaEngine)

	interceptorRegistry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, interceptorRegistry); err != nil {
		log.Fatal("webrtc.Setup: RegisterDefaultInterceptors:", err)
	}

	udpMuxCache := map[int]*ice.MultiUDPMuxDefault{}
	settingEngine := GetSettingEngine(udpMuxCache)

	API = webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(interceptorRegistry),
		webrtc.WithSettingEngine(settingEngine),
	)
}
