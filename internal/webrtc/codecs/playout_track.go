// PlayoutTrack is a single-codec webrtc.TrackLocal fed directly by the
// playout scheduler (§4.6). Replay is never simulcast or multi-codec per
// spec.md's Non-goals, so this is deliberately simpler than a track that
// needs to cope with a codec change mid-stream.
package codecs

import (
	"fmt"
	"log"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// PlayoutTrack binds to exactly one negotiated RTPCodecParameters and
// rewrites every packet's payload-type byte to match (§4.6's "Payload-type
// rewrite").
type PlayoutTrack struct {
	id         string
	streamID   string
	kind       webrtc.RTPCodecType
	capability webrtc.RTPCodecCapability

	ssrc        webrtc.SSRC
	writeStream webrtc.TrackLocalWriter

	payloadType uint8
	errorCount  int
}

// NewPlayoutTrack constructs a track advertising capability under kind; id
// and streamID follow the recording's id so viewer SDP is self-describing.
func NewPlayoutTrack(kind webrtc.RTPCodecType, capability webrtc.RTPCodecCapability, recordingID int64) *PlayoutTrack {
	return &PlayoutTrack{
		id:         fmt.Sprintf("%s-%d", kind, recordingID),
		streamID:   fmt.Sprintf("recording-%d", recordingID),
		kind:       kind,
		capability: capability,
	}
}

func (t *PlayoutTrack) ID() string                { return t.id }
func (t *PlayoutTrack) RID() string               { return "" }
func (t *PlayoutTrack) StreamID() string          { return t.streamID }
func (t *PlayoutTrack) Kind() webrtc.RTPCodecType { return t.kind }

// Bind records the negotiated payload type for this track's single codec
// and the write stream the playout worker relays packets through.
func (t *PlayoutTrack) Bind(ctx webrtc.TrackLocalContext) (webrtc.RTPCodecParameters, error) {
	t.ssrc = ctx.SSRC()
	t.writeStream = ctx.WriteStream()

	for _, params := range ctx.CodecParameters() {
		if params.MimeType == t.capability.MimeType {
			t.payloadType = uint8(params.PayloadType)
			return params, nil
		}
	}

	return webrtc.RTPCodecParameters{}, fmt.Errorf("codecs.PlayoutTrack.Bind: no matching codec for %s", t.capability.MimeType)
}

func (t *PlayoutTrack) Unbind(webrtc.TrackLocalContext) error { return nil }

// WriteRTP rewrites packet's SSRC and payload type to match this track's
// negotiated parameters and relays it to the peer.
func (t *PlayoutTrack) WriteRTP(packet *rtp.Packet) error {
	packet.SSRC = uint32(t.ssrc)
	packet.PayloadType = t.payloadType

	if _, err := t.writeStream.WriteRTP(&packet.Header, packet.Payload); err != nil {
		t.errorCount++
		if t.errorCount%50 == 0 {
			log.Println("PlayoutTrack.WriteRTP: repeated failure", t.errorCount, err)
		}
		return err
	}

	return nil
}
