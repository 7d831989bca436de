// Package codecs registers the fixed codec/payload-type table used for
// every record and play peer connection (§3, §4.4: PCMU=0, PCMA=8, G.722=9,
// else 111 for audio; 100 for video). It covers a subset of the mjr
// package's preferred-codec table: Opus, PCMU, PCMA and G.722 for audio, and
// VP8 only for video.
package codecs

import (
	"log"

	"github.com/pion/webrtc/v4"
)

// AudioPayloadType fixes the outbound payload type for codec, per §3's
// "fixed audio payload type (0 for PCMU, 8 for PCMA, 9 for G.722, else 111)".
func AudioPayloadType(codec string) uint8 {
	switch codec {
	case "PCMU":
		return 0
	case "PCMA":
		return 8
	case "G722":
		return 9
	default:
		return 111
	}
}

// VideoPayloadType is fixed at 100 for every video codec (§3).
const VideoPayloadType uint8 = 100

var audioCodecs = []webrtc.RTPCodecParameters{
	{
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2, SDPFmtpLine: "minptime=10;useinbandfec=1"},
		PayloadType:        111,
	},
	{
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMU, ClockRate: 8000, Channels: 1},
		PayloadType:        0,
	},
	{
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypePCMA, ClockRate: 8000, Channels: 1},
		PayloadType:        8,
	},
	{
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeG722, ClockRate: 8000, Channels: 1},
		PayloadType:        9,
	},
}

var videoCodecs = []webrtc.RTPCodecParameters{
	{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:     webrtc.MimeTypeVP8,
			ClockRate:    90000,
			RTCPFeedback: []webrtc.RTCPFeedback{{Type: "goog-remb"}, {Type: "ccm", Parameter: "fir"}, {Type: "nack"}, {Type: "nack", Parameter: "pli"}},
		},
		PayloadType: 100,
	},
}

// RegisterCodecs registers the fixed codec table on mediaEngine, matching
// the teacher's RegisterCodecs and logging any registration failure rather
// than treating it as fatal — a codec the peer never negotiates is fine.
func RegisterCodecs(mediaEngine *webrtc.MediaEngine) {
	for _, codec := range audioCodecs {
		if err := mediaEngine.RegisterCodec(codec, webrtc.RTPCodecTypeAudio); err != nil {
			log.Println("RegisterCodecs: audio codec failed", codec.MimeType, err)
		}
	}

	for _, codec := range videoCodecs {
		if err := mediaEngine.RegisterCodec(codec, webrtc.RTPCodecTypeVideo); err != nil {
			log.Println("RegisterCodecs: video codec failed", codec.MimeType, err)
		}
	}
}
