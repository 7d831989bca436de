package webrtc

import (
	"log"

	"github.com/pion/webrtc/v4"
)

// OfferDescription wraps raw SDP as an offer SessionDescription.
func OfferDescription(sdp string) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp}
}

// NewPeerConnection builds a peer connection from the shared API and
// SettingEngine-derived configuration, used by both record and play roles.
func NewPeerConnection() (*webrtc.PeerConnection, error) {
	return API.NewPeerConnection(PeerConnectionConfig())
}

// AcceptRecordOffer completes the `record` flow (§4.4): the peer's offer is
// sendonly for the tracks it intends to send, so the plugin answers without
// adding any local tracks.
func AcceptRecordOffer(offerSDP string) (pc *webrtc.PeerConnection, answerSDP string, err error) {
	pc, err = NewPeerConnection()
	if err != nil {
		return nil, "", err
	}

	if err = pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: debugOutputSDP("record", kindOffer, offerSDP)}); err != nil {
		return nil, "", err
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return nil, "", err
	}

	if err = pc.SetLocalDescription(answer); err != nil {
		return nil, "", err
	}

	<-gatherComplete
	log.Println("webrtc.AcceptRecordOffer: answered")

	return pc, debugOutputSDP("record", kindAnswer, pc.LocalDescription().SDP), nil
}

// GenerateRecordOffer implements `record-generate-offer`: the plugin offers
// recvonly audio and video, letting the peer decide which to fill in.
func GenerateRecordOffer() (pc *webrtc.PeerConnection, offerSDP string, err error) {
	pc, err = NewPeerConnection()
	if err != nil {
		return nil, "", err
	}

	if _, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly}); err != nil {
		return nil, "", err
	}

	if _, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly}); err != nil {
		return nil, "", err
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, "", err
	}

	if err = pc.SetLocalDescription(offer); err != nil {
		return nil, "", err
	}

	<-gatherComplete

	return pc, debugOutputSDP("record", kindOffer, pc.LocalDescription().SDP), nil
}

// CompleteRecordAnswer finishes `record-process-answer` by consuming the
// peer's SDP answer to a plugin-generated offer.
func CompleteRecordAnswer(pc *webrtc.PeerConnection, answerSDP string) error {
	return pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: debugOutputSDP("record", kindAnswer, answerSDP)})
}

// GeneratePlayOffer implements `play`: the plugin offers sendonly for every
// track present on the recording.
func GeneratePlayOffer(tracks []webrtc.TrackLocal) (pc *webrtc.PeerConnection, offerSDP string, err error) {
	pc, err = NewPeerConnection()
	if err != nil {
		return nil, "", err
	}

	for _, track := range tracks {
		if _, err = pc.AddTransceiverFromTrack(track, webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionSendonly}); err != nil {
			return nil, "", err
		}
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, "", err
	}

	if err = pc.SetLocalDescription(offer); err != nil {
		return nil, "", err
	}

	<-gatherComplete

	return pc, debugOutputSDP("play", kindOffer, pc.LocalDescription().SDP), nil
}

// CompletePlayAnswer implements `start`: consumes the peer's answer to the
// plugin-generated play offer.
func CompletePlayAnswer(pc *webrtc.PeerConnection, answerSDP string) error {
	return pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: debugOutputSDP("play", kindAnswer, answerSDP)})
}
