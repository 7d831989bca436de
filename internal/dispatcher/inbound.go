package dispatcher

import (
	"log"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/auvious/janus-gateway/internal/feedback"
	"github.com/auvious/janus-gateway/internal/session"
)

const defaultTargetBitrate = 1_000_000

// wireRecordTrack arms pc's OnTrack callback so inbound RTP from a
// recording peer reaches the session's per-track writer and, for video,
// the feedback governor (§4.1 write path, §4.7 feedback).
func wireRecordTrack(sess *session.Session, pc *webrtc.PeerConnection) {
	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Println("Dispatcher.wireRecordTrack: inbound track", track.Kind(), sess.ID)

		isVideo := track.Kind() == webrtc.RTPCodecTypeVideo
		if isVideo {
			ensureGovernor(sess)
		}

		for {
			packet, _, err := track.ReadRTP()
			if err != nil {
				return
			}

			if sess.SimulcastSSRC != 0 && uint32(packet.SSRC) != sess.SimulcastSSRC {
				continue
			}

			raw, err := packet.Marshal()
			if err != nil {
				continue
			}

			if isVideo {
				if err := sess.WriteVideoFrame(raw); err != nil {
					log.Println("Dispatcher.wireRecordTrack: video write failed", err)
					continue
				}

				if governor := sess.Governor.Load(); governor != nil {
					if feedbackPackets := governor.OnVideoPacket(uint32(packet.SSRC), time.Now()); len(feedbackPackets) > 0 {
						if err := pc.WriteRTCP(feedbackPackets); err != nil {
							log.Println("Dispatcher.wireRecordTrack: WriteRTCP failed", err)
						}
					}
				}
			} else if err := sess.WriteAudioFrame(raw); err != nil {
				log.Println("Dispatcher.wireRecordTrack: audio write failed", err)
			}
		}
	})
}

func ensureGovernor(sess *session.Session) {
	target := sess.TargetBitrate.Load()
	if target == 0 {
		target = defaultTargetBitrate
	}

	governor := feedback.NewGovernor(target)
	governor.KeyframeInterval = sess.KeyframeInterval
	sess.Governor.CompareAndSwap(nil, governor)
}
