// Package protocol defines the JSON control-message envelope and the fixed
// error codes exchanged over the control-message surface (§6, §7).
package protocol

// Code is one of the fixed integer error codes in §6.
type Code int

const (
	NoMessage        Code = 411
	InvalidJSON      Code = 412
	InvalidRequest   Code = 413
	InvalidElement   Code = 414
	MissingElement   Code = 415
	NotFound         Code = 416
	InvalidRecording Code = 417
	InvalidState     Code = 418
	InvalidSdp       Code = 419
	RecordingExists  Code = 420
	Unknown          Code = 499
)

func (c Code) String() string {
	switch c {
	case NoMessage:
		return "no-message"
	case InvalidJSON:
		return "invalid-json"
	case InvalidRequest:
		return "invalid-request"
	case InvalidElement:
		return "invalid-element"
	case MissingElement:
		return "missing-element"
	case NotFound:
		return "not-found"
	case InvalidRecording:
		return "invalid-recording"
	case InvalidState:
		return "invalid-state"
	case InvalidSdp:
		return "invalid-sdp"
	case RecordingExists:
		return "recording-exists"
	default:
		return "unknown"
	}
}

// Error is the typed error the dispatcher's handlers return; it carries the
// numeric Code that the transport boundary maps onto the wire response.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError constructs an *Error, defaulting Message to the code's label
// when none is given.
func NewError(code Code, message string) *Error {
	if message == "" {
		message = code.String()
	}
	return &Error{Code: code, Message: message}
}

// Request is the inbound control-message envelope (§4.4, §6). Fields beyond
// `request` are interpreted per-variant by the matching handler.
type Request struct {
	Request string `json:"request"`

	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	SDP        string         `json:"sdp,omitempty"`
	SDPUpdate  bool           `json:"sdp_update,omitempty"`
	JSEPUpdate bool           `json:"update,omitempty"`
	Simulcast  *SimulcastInfo `json:"simulcast,omitempty"`

	Bitrate          uint64 `json:"bitrate,omitempty"`
	KeyframeInterval int64  `json:"keyframe_interval,omitempty"`

	Filename string `json:"filename,omitempty"`

	handle string
}

// SimulcastInfo mirrors the JSEP `simulcast` field's base-layer SSRC (§4.4).
type SimulcastInfo struct {
	SSRC0 uint32 `json:"ssrc-0"`
}

// SetHandle records which session handle a decoded request arrived on; the
// transport boundary sets this, never the JSON body.
func (r *Request) SetHandle(handle string) { r.handle = handle }

// Handle returns the session handle this request targets.
func (r *Request) Handle() string { return r.handle }

// Response is the outbound envelope (§6). Exactly one of Result or
// (ErrorCode, Error) is populated alongside Recordplay/List.
type Response struct {
	Recordplay string      `json:"recordplay"`
	List       []ListEntry `json:"list,omitempty"`
	Result     *Result     `json:"result,omitempty"`
	ErrorCode  Code        `json:"error_code,omitempty"`
	Error      string      `json:"error,omitempty"`

	SDP string `json:"sdp,omitempty"`
}

// ListEntry is one element of a `list` response (§6, spec.md §8 scenario 3).
type ListEntry struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Audio      bool   `json:"audio"`
	Video      bool   `json:"video"`
	AudioCodec string `json:"audio_codec,omitempty"`
	VideoCodec string `json:"video_codec,omitempty"`
}

// Result carries the `status` shape of an event response (§6).
type Result struct {
	Status   string `json:"status"`
	ID       int64  `json:"id,omitempty"`
	Uplink   bool   `json:"uplink,omitempty"`
	Downlink bool   `json:"downlink,omitempty"`
	Bitrate  uint64 `json:"current-bitrate,omitempty"`
}

// OK builds the `"recordplay":"ok"` envelope used for synchronous acks.
func OK() *Response { return &Response{Recordplay: "ok"} }

// Event builds a `"recordplay":"event"` envelope carrying result.
func Event(result Result) *Response {
	return &Response{Recordplay: "event", Result: &result}
}

// ErrResponse builds a `"recordplay":"event"` error envelope from an *Error.
func ErrResponse(err *Error) *Response {
	return &Response{Recordplay: "event", ErrorCode: err.Code, Error: err.Message}
}

// ListResponse builds the `"recordplay":"list"` envelope.
func ListResponse(entries []ListEntry) *Response {
	return &Response{Recordplay: "list", List: entries}
}

// ConfigureResponse builds the `"recordplay":"configure"` envelope.
func ConfigureResponse() *Response { return &Response{Recordplay: "configure"} }
