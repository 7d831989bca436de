package webrtc

import "testing"

const sampleOfferSDP = `v=0
o=- 1 1 IN IP4 127.0.0.1
s=-
t=0 0
m=audio 9 UDP/TLS/RTP/SAVPF 111
c=IN IP4 0.0.0.0
a=rtpmap:111 opus/48000/2
a=sendrecv
m=video 9 UDP/TLS/RTP/SAVPF 100
c=IN IP4 0.0.0.0
a=rtpmap:100 VP8/90000
a=sendrecv
`

const recvonlyVideoSDP = `v=0
o=- 1 1 IN IP4 127.0.0.1
s=-
t=0 0
m=video 9 UDP/TLS/RTP/SAVPF 100
c=IN IP4 0.0.0.0
a=rtpmap:100 VP8/90000
a=recvonly
`

func TestParseSDPExtractsAudioAndVideo(t *testing.T) {
	negotiated, err := ParseSDP(sampleOfferSDP)
	if err != nil {
		t.Fatalf("ParseSDP: %v", err)
	}

	if !negotiated.Audio.Present || negotiated.Audio.Codec != "opus" {
		t.Fatalf("unexpected audio track: %+v", negotiated.Audio)
	}

	if !negotiated.Video.Present || negotiated.Video.Codec != "vp8" {
		t.Fatalf("unexpected video track: %+v", negotiated.Video)
	}
}

func TestParseSDPTreatsRecvonlyAsAbsent(t *testing.T) {
	negotiated, err := ParseSDP(recvonlyVideoSDP)
	if err != nil {
		t.Fatalf("ParseSDP: %v", err)
	}

	if negotiated.Video.Present {
		t.Fatal("expected a recvonly media line to be treated as absent")
	}
}
