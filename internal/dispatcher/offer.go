package dispatcher

import (
	"github.com/pion/webrtc/v4"

	"github.com/auvious/janus-gateway/internal/recording"
	rtcgw "github.com/auvious/janus-gateway/internal/webrtc"
	"github.com/auvious/janus-gateway/internal/webrtc/codecs"
)

// playoutTracks builds one PlayoutTrack per track present on rec, advertised
// sendonly to the viewer (§4.4, §6).
func playoutTracks(rec *recording.Recording) []webrtc.TrackLocal {
	var tracks []webrtc.TrackLocal

	if rec.HasAudio() {
		tracks = append(tracks, codecs.NewPlayoutTrack(
			webrtc.RTPCodecTypeAudio,
			audioCapability(rec.AudioCodec),
			rec.ID,
		))
	}

	if rec.HasVideo() {
		tracks = append(tracks, codecs.NewPlayoutTrack(
			webrtc.RTPCodecTypeVideo,
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000},
			rec.ID,
		))
	}

	return tracks
}

func audioCapability(codec string) webrtc.RTPCodecCapability {
	switch codec {
	case "pcmu":
		return webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMU, ClockRate: 8000, Channels: 1}
	case "pcma":
		return webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMA, ClockRate: 8000, Channels: 1}
	case "g722":
		return webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeG722, ClockRate: 8000, Channels: 1}
	default:
		return webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}
	}
}

// buildPlayOffer precomputes rec.Offer, the §3 Recording field that gates
// `play` on "without a precomputed offer, fail NotFound" (§4.4). The
// throwaway peer connection used to produce it is discarded immediately —
// its SDP text is never sent to a viewer, since every viewer gets its own
// peer connection (and therefore its own ICE/DTLS parameters) from
// handlePlay. Reusing this cached text as the viewer's answer-bound offer
// would negotiate against credentials nobody holds.
func buildPlayOffer(rec *recording.Recording) (string, error) {
	tracks := playoutTracks(rec)
	if len(tracks) == 0 {
		return "", nil
	}

	pc, offer, err := rtcgw.GeneratePlayOffer(tracks)
	if err != nil {
		return "", err
	}
	defer pc.Close()

	return offer, nil
}
