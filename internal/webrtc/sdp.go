package webrtc

import (
	"strings"

	"github.com/pion/sdp/v3"
)

// TrackInfo is what the dispatcher needs out of an SDP offer/answer to
// populate a Recording (§4.4): whether the track is present and its codec
// name. The base simulcast SSRC is never derived from SDP text — it comes
// from the JSEP `simulcast` field on the request, see protocol.SimulcastInfo.
type TrackInfo struct {
	Present bool
	Codec   string
}

// Negotiated describes the audio/video tracks found in an SDP body, parsed
// with pion/sdp/v3 (§1's external "SDP parser/generator" collaborator).
type Negotiated struct {
	Audio TrackInfo
	Video TrackInfo
}

// ParseSDP extracts per-media presence and codec from raw SDP text, per
// §4.4: "find preferred audio and video codecs; if a media line is
// recvonly, that track is absent."
func ParseSDP(raw string) (Negotiated, error) {
	var parsed sdp.SessionDescription
	if err := parsed.Unmarshal([]byte(raw)); err != nil {
		return Negotiated{}, err
	}

	var result Negotiated

	for _, media := range parsed.MediaDescriptions {
		switch media.MediaName.Media {
		case "audio":
			result.Audio = trackInfoFromMedia(media)
		case "video":
			result.Video = trackInfoFromMedia(media)
		}
	}

	return result, nil
}

func trackInfoFromMedia(media *sdp.MediaDescription) TrackInfo {
	_, recvonly := media.Attribute("recvonly")
	_, inactive := media.Attribute("inactive")
	if recvonly || inactive {
		return TrackInfo{}
	}

	info := TrackInfo{Present: len(media.MediaName.Formats) > 0}

	for _, attr := range media.Attributes {
		if attr.Key == "rtpmap" {
			fields := strings.Fields(attr.Value)
			if len(fields) == 2 {
				nameAndRate := strings.SplitN(fields[1], "/", 2)
				info.Codec = strings.ToLower(nameAndRate[0])
			}
			break
		}
	}

	return info
}
