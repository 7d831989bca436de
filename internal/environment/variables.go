package environment

const (
	// SERVER
	AppEnv      = "APP_ENV"
	HTTPAddress = "HTTP_ADDRESS"

	// RECORDPLAY
	RecordingsPath = "RECORDINGS_PATH"
	EventsEnabled  = "EVENTS_ENABLED"

	// WEBRTC
	STUNServers     = "STUN_SERVERS"
	NAT1To1IP       = "NAT_1_TO_1_IP"
	UDPMuxPort      = "UDP_MUX_PORT"
	InterfaceFilter = "INTERFACE_FILTER"
	ICELite         = "ICE_LITE"

	// DEBUGGING
	DebugPrintOffer  = "DEBUG_PRINT_OFFER"
	DebugPrintAnswer = "DEBUG_PRINT_ANSWER"
)
