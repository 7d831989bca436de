package dispatcher

import (
	"fmt"
	"log"
	"strings"
	"time"

	pionwebrtc "github.com/pion/webrtc/v4"

	"github.com/auvious/janus-gateway/internal/indexer"
	"github.com/auvious/janus-gateway/internal/mjr"
	"github.com/auvious/janus-gateway/internal/playout"
	"github.com/auvious/janus-gateway/internal/protocol"
	"github.com/auvious/janus-gateway/internal/recording"
	"github.com/auvious/janus-gateway/internal/session"
	rtcgw "github.com/auvious/janus-gateway/internal/webrtc"
	"github.com/auvious/janus-gateway/internal/webrtc/codecs"
)

// handle validates the `request` field and routes to a per-variant handler
// (§4.4, §9's "Tagged-record dispatch" note).
func (d *Dispatcher) handle(req *protocol.Request) *protocol.Response {
	if req == nil {
		return protocol.ErrResponse(protocol.NewError(protocol.NoMessage, ""))
	}

	switch req.Request {
	case "":
		return protocol.ErrResponse(protocol.NewError(protocol.MissingElement, "missing 'request'"))
	case "list":
		return d.handleList()
	case "update":
		return protocol.OK()
	case "configure":
		return d.handleConfigure(req)
	case "record":
		return d.handleRecordStart(req, false)
	case "record-generate-offer":
		return d.handleRecordGenerateOffer(req)
	case "record-process-answer":
		return d.handleRecordStart(req, true)
	case "play":
		return d.handlePlay(req)
	case "start":
		return d.handleStart(req)
	case "stop":
		return d.handleStop(req)
	default:
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidRequest, "unknown request: "+req.Request))
	}
}

func (d *Dispatcher) handleList() *protocol.Response {
	summaries := d.ctx.Registry.List()

	entries := make([]protocol.ListEntry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, protocol.ListEntry{
			ID:         s.ID,
			Name:       s.Name,
			Date:       s.Date,
			Audio:      s.Audio,
			Video:      s.Video,
			AudioCodec: s.AudioCodec,
			VideoCodec: s.VideoCodec,
		})
	}

	return protocol.ListResponse(entries)
}

func (d *Dispatcher) handleConfigure(req *protocol.Request) *protocol.Response {
	sess, ok := d.ctx.Sessions.Get(req.Handle())
	if !ok {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, "no session for handle"))
	}

	if req.Bitrate > 0 {
		sess.TargetBitrate.Store(req.Bitrate)
	}

	if req.KeyframeInterval > 0 {
		sess.KeyframeInterval = time.Duration(req.KeyframeInterval) * time.Millisecond
	}

	return protocol.ConfigureResponse()
}

// handleRecordStart implements both `record` (offer path) and
// `record-process-answer` (answer path), per §4.4's "Recording start".
func (d *Dispatcher) handleRecordStart(req *protocol.Request, isAnswer bool) *protocol.Response {
	if req.Name == "" {
		return protocol.ErrResponse(protocol.NewError(protocol.MissingElement, "missing 'name'"))
	}

	sess, ok := d.ctx.Sessions.Get(req.Handle())
	if !ok {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, "no session for handle"))
	}

	// ICE-restart / SDP update on an already-recording session (§4.4):
	// reuse the existing recording and writers, just bump the SDP version.
	if req.JSEPUpdate && sess.Role() == session.RoleRecorder {
		sess.SDPVersion++
		return d.recordUpdateResponse(sess, req)
	}

	id := req.ID
	if id != 0 && d.ctx.Registry.Exists(id) {
		return protocol.ErrResponse(protocol.NewError(protocol.RecordingExists, fmt.Sprintf("recording %d already exists", id)))
	}

	if id == 0 {
		allocated, err := d.ctx.Registry.AllocateID()
		if err != nil {
			return protocol.ErrResponse(protocol.NewError(protocol.Unknown, err.Error()))
		}
		id = allocated
	}

	negotiated, err := rtcgw.ParseSDP(req.SDP)
	if err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidSdp, err.Error()))
	}

	if req.Simulcast != nil && req.Simulcast.SSRC0 != 0 {
		sess.SimulcastSSRC = req.Simulcast.SSRC0
	}

	rec := &recording.Recording{
		ID:   id,
		Name: req.Name,
		Date: time.Now().Format("2006-01-02 15:04:05"),
	}

	var audioWriter, videoWriter *mjr.Writer
	now := time.Now().UnixMicro()

	if negotiated.Audio.Present {
		rec.AudioCodec = negotiated.Audio.Codec
		rec.AudioFile = trackFilename(req.Filename, id, "audio")
		audioWriter, err = mjr.Create(d.ctx.RecordingsDir+"/"+rec.AudioFile+".mjr", mjr.Audio, rec.AudioCodec, now)
		if err != nil {
			return protocol.ErrResponse(protocol.NewError(protocol.Unknown, err.Error()))
		}
	}

	if negotiated.Video.Present {
		rec.VideoCodec = negotiated.Video.Codec
		rec.VideoFile = trackFilename(req.Filename, id, "video")
		videoWriter, err = mjr.Create(d.ctx.RecordingsDir+"/"+rec.VideoFile+".mjr", mjr.Video, rec.VideoCodec, now)
		if err != nil {
			if audioWriter != nil {
				_ = audioWriter.Close()
			}
			return protocol.ErrResponse(protocol.NewError(protocol.Unknown, err.Error()))
		}
	}

	if rec.AudioCodec != "" {
		rec.AudioPT = codecs.AudioPayloadType(strings.ToUpper(rec.AudioCodec))
	}
	if rec.VideoCodec != "" {
		rec.VideoPT = codecs.VideoPayloadType
	}

	if offer, err := buildPlayOffer(rec); err != nil {
		log.Println("Dispatcher.handleRecordStart: precomputing viewer offer failed", err)
	} else {
		rec.Offer = offer
	}

	var answerSDP string
	if isAnswer {
		pc := sess.PC.Load()
		if pc == nil {
			return protocol.ErrResponse(protocol.NewError(protocol.InvalidState, "no pending record offer for this session"))
		}
		if err := rtcgw.CompleteRecordAnswer(pc, req.SDP); err != nil {
			return protocol.ErrResponse(protocol.NewError(protocol.InvalidSdp, err.Error()))
		}
		if req.SDPUpdate {
			answerSDP = req.SDP
		}
	} else {
		pc, answer, err := rtcgw.AcceptRecordOffer(req.SDP)
		if err != nil {
			return protocol.ErrResponse(protocol.NewError(protocol.InvalidSdp, err.Error()))
		}
		sess.PC.Store(pc)
		wireRecordTrack(sess, pc)
		answerSDP = answer
	}

	if err := sess.BeginRecording(rec, audioWriter, videoWriter); err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidState, err.Error()))
	}

	rec.Ref()
	if err := d.ctx.Registry.Insert(rec); err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.RecordingExists, err.Error()))
	}

	if d.ctx.EventsEnabled {
		log.Println("Dispatcher.handleRecordStart: recording started", id, req.Name)
	}

	resp := protocol.Event(protocol.Result{Status: "recording", ID: id})
	resp.SDP = answerSDP
	return resp
}

func (d *Dispatcher) recordUpdateResponse(sess *session.Session, req *protocol.Request) *protocol.Response {
	pc := sess.PC.Load()
	if pc == nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidState, "no peer connection to update"))
	}

	answerSDP := ""
	if req.SDP != "" {
		if err := pc.SetRemoteDescription(rtcgw.OfferDescription(req.SDP)); err != nil {
			return protocol.ErrResponse(protocol.NewError(protocol.InvalidSdp, err.Error()))
		}
		answer, err := pc.CreateAnswer(nil)
		if err != nil {
			return protocol.ErrResponse(protocol.NewError(protocol.InvalidSdp, err.Error()))
		}
		if err := pc.SetLocalDescription(answer); err != nil {
			return protocol.ErrResponse(protocol.NewError(protocol.InvalidSdp, err.Error()))
		}
		answerSDP = pc.LocalDescription().SDP
	}

	rec := sess.Recording()
	resp := protocol.Event(protocol.Result{Status: "recording", ID: rec.ID})
	resp.SDP = answerSDP
	return resp
}

func (d *Dispatcher) handleRecordGenerateOffer(req *protocol.Request) *protocol.Response {
	sess, ok := d.ctx.Sessions.Get(req.Handle())
	if !ok {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, "no session for handle"))
	}

	pc, offer, err := rtcgw.GenerateRecordOffer()
	if err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, err.Error()))
	}

	if req.Simulcast != nil && req.Simulcast.SSRC0 != 0 {
		sess.SimulcastSSRC = req.Simulcast.SSRC0
	}

	sess.PC.Store(pc)
	wireRecordTrack(sess, pc)

	resp := protocol.Event(protocol.Result{Status: "recording"})
	resp.SDP = offer
	return resp
}

func (d *Dispatcher) handlePlay(req *protocol.Request) *protocol.Response {
	if req.SDP != "" {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidElement, "play must not carry sdp"))
	}

	sess, ok := d.ctx.Sessions.Get(req.Handle())
	if !ok {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, "no session for handle"))
	}

	rec, err := d.ctx.Registry.Lookup(req.ID)
	if err != nil || rec.Destroyed() || rec.Offer == "" {
		return protocol.ErrResponse(protocol.NewError(protocol.NotFound, "recording not found or not playable"))
	}

	var audioIndex, videoIndex *indexer.Index
	var audioErr, videoErr error

	if rec.HasAudio() {
		audioIndex, audioErr = indexer.Build(d.ctx.RecordingsDir + "/" + rec.AudioFile + ".mjr")
	}
	if rec.HasVideo() {
		videoIndex, videoErr = indexer.Build(d.ctx.RecordingsDir + "/" + rec.VideoFile + ".mjr")
	}

	if audioErr != nil && videoErr != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidRecording, "could not index either track"))
	}
	if audioErr != nil {
		log.Println("Dispatcher.handlePlay: audio index failed, continuing with video only", audioErr)
	}
	if videoErr != nil {
		log.Println("Dispatcher.handlePlay: video index failed, continuing with audio only", videoErr)
	}

	if err := sess.BeginPreparing(rec, audioIndex, videoIndex); err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidState, err.Error()))
	}

	tracks := playoutTracks(rec)
	pc, offerSDP, err := rtcgw.GeneratePlayOffer(tracks)
	if err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, err.Error()))
	}
	sess.PC.Store(pc)

	for _, track := range tracks {
		sender, ok := track.(session.FrameSender)
		if !ok {
			continue
		}
		if track.Kind() == pionwebrtc.RTPCodecTypeAudio {
			sess.AudioSender = sender
		} else {
			sess.VideoSender = sender
		}
	}

	rec.Ref()
	rec.AddViewer(sess)

	resp := protocol.Event(protocol.Result{Status: "preparing", ID: rec.ID})
	resp.SDP = offerSDP
	return resp
}

func (d *Dispatcher) handleStart(req *protocol.Request) *protocol.Response {
	if req.SDP == "" {
		return protocol.ErrResponse(protocol.NewError(protocol.MissingElement, "missing 'sdp' answer"))
	}

	sess, ok := d.ctx.Sessions.Get(req.Handle())
	if !ok {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, "no session for handle"))
	}

	pc := sess.PC.Load()
	if pc == nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidState, "no pending play offer for this session"))
	}

	if err := rtcgw.CompletePlayAnswer(pc, req.SDP); err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidSdp, err.Error()))
	}

	if err := sess.StartPlaying(); err != nil {
		return protocol.ErrResponse(protocol.NewError(protocol.InvalidState, err.Error()))
	}

	sess.SetActive(true)

	rec := sess.Recording()
	d.launchPlayoutWorker(sess, rec)

	return protocol.Event(protocol.Result{Status: "playing", ID: rec.ID})
}

// launchPlayoutWorker starts the per-session pacing goroutine (§4.6). The
// session must already be active: the worker stops as soon as the session
// is destroyed or no longer active.
func (d *Dispatcher) launchPlayoutWorker(sess *session.Session, rec *recording.Recording) {
	var audioPath, videoPath string
	var audioClockRate uint32

	if rec.HasAudio() {
		audioPath = d.ctx.RecordingsDir + "/" + rec.AudioFile + ".mjr"
		audioClockRate = playout.AudioClockRate(rec.AudioCodec)
	}
	if rec.HasVideo() {
		videoPath = d.ctx.RecordingsDir + "/" + rec.VideoFile + ".mjr"
	}

	worker, err := playout.NewWorker(
		audioPath, sess.AudioIndex, sess.AudioSender, audioClockRate,
		videoPath, sess.VideoIndex, sess.VideoSender,
		func() bool { return sess.Destroyed() || !sess.Active() },
		func() { sess.Hangup() },
	)
	if err != nil {
		log.Println("Dispatcher.launchPlayoutWorker: failed to start", sess.ID, err)
		return
	}

	go worker.Run()
}

func (d *Dispatcher) handleStop(req *protocol.Request) *protocol.Response {
	sess, ok := d.ctx.Sessions.Get(req.Handle())
	if !ok {
		return protocol.ErrResponse(protocol.NewError(protocol.Unknown, "no session for handle"))
	}

	rec := sess.Recording()
	wasRecorder := sess.Role() == session.RoleRecorder

	sess.Hangup()

	// remove-on-hangup (§9 open question): preserved to match the original
	// plugin's observable behavior, see DESIGN.md.
	if wasRecorder && rec != nil {
		_ = d.ctx.Registry.Remove(rec.ID)
	}

	return protocol.Event(protocol.Result{Status: "stopped"})
}

func trackFilename(userFilename string, id int64, kind string) string {
	if userFilename != "" {
		return fmt.Sprintf("%s-%s", userFilename, kind)
	}
	return fmt.Sprintf("rec-%d-%s", id, kind)
}
