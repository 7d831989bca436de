package webrtc

import (
	"log"
	"os"
	"strings"

	"github.com/auvious/janus-gateway/internal/environment"
)

// sdpKind distinguishes an offer from an answer, since DEBUG_PRINT_OFFER
// and DEBUG_PRINT_ANSWER gate the two independently.
type sdpKind int

const (
	kindOffer sdpKind = iota
	kindAnswer
)

// debugOutputSDP logs sdp, tagged with which exchange produced it ("record"
// or "play") and whether it's an offer or an answer, when the matching
// debug flag is set, then returns sdp unchanged so call sites can wrap the
// value inline.
func debugOutputSDP(exchange string, kind sdpKind, sdp string) string {
	envVar, label := environment.DebugPrintOffer, "offer"
	if kind == kindAnswer {
		envVar, label = environment.DebugPrintAnswer, "answer"
	}

	if strings.EqualFold(os.Getenv(envVar), "true") {
		log.Printf("webrtc debug: %s %s\n%s", exchange, label, sdp)
	}

	return sdp
}
