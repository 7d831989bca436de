package webrtc

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pion/dtls/v3/pkg/crypto/elliptic"
	"github.com/pion/ice/v4"
	"github.com/pion/webrtc/v4"

	"github.com/auvious/janus-gateway/internal/environment"
)

// GetSettingEngine builds the SettingEngine shared by every record and play
// peer connection: DTLS curve preference, NAT rewrite, interface filtering,
// and an optional shared UDP mux, read from environment (§6's
// configuration surface plus the teacher-style network toggles).
func GetSettingEngine(udpMuxCache map[int]*ice.MultiUDPMuxDefault) (settingEngine webrtc.SettingEngine) {
	settingEngine.SetDTLSEllipticCurves(elliptic.X25519, elliptic.P384, elliptic.P256)
	settingEngine.SetNetworkTypes([]webrtc.NetworkType{webrtc.NetworkTypeUDP4, webrtc.NetworkTypeUDP6})

	setupNAT(&settingEngine)
	setupInterfaceFilter(&settingEngine)
	setupUDPMux(&settingEngine, udpMuxCache)

	if strings.EqualFold(os.Getenv(environment.ICELite), "true") {
		settingEngine.SetLite(true)
	}

	return
}

func setupNAT(settingEngine *webrtc.SettingEngine) {
	natIP := os.Getenv(environment.NAT1To1IP)
	if natIP == "" {
		return
	}

	settingEngine.SetNAT1To1IPs(strings.Split(natIP, "|"), webrtc.ICECandidateTypeHost)
}

func setupInterfaceFilter(settingEngine *webrtc.SettingEngine) {
	filter := os.Getenv(environment.InterfaceFilter)
	if filter == "" {
		return
	}

	settingEngine.SetInterfaceFilter(func(name string) bool { return name == filter })
}

func setupUDPMux(settingEngine *webrtc.SettingEngine, udpMuxCache map[int]*ice.MultiUDPMuxDefault) {
	portStr := os.Getenv(environment.UDPMuxPort)
	if portStr == "" {
		return
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatal("Configuration error: UDP_MUX_PORT:", err)
	}

	udpMux, ok := udpMuxCache[port]
	if !ok {
		udpMux, err = ice.NewMultiUDPMuxFromPort(port)
		if err != nil {
			log.Fatal("Settings.setupUDPMux:", err)
		}
		udpMuxCache[port] = udpMux
	}

	settingEngine.SetICEUDPMux(udpMux)
}

// PeerConnectionConfig builds the ICEServers list from STUN_SERVERS.
func PeerConnectionConfig() webrtc.Configuration {
	config := webrtc.Configuration{}

	if stunServers := os.Getenv(environment.STUNServers); stunServers != "" {
		for _, stunServer := range strings.Split(stunServers, "|") {
			config.ICEServers = append(config.ICEServers, webrtc.ICEServer{
				URLs: []string{"stun:" + stunServer},
			})
		}
	}

	return config
}
