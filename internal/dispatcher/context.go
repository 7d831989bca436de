package dispatcher

import (
	"github.com/auvious/janus-gateway/internal/recording"
	"github.com/auvious/janus-gateway/internal/session"
)

// Context bundles the process-wide state every handler needs, per §9's
// design note: "package them into a single context value constructed at
// startup and passed to every entry point."
type Context struct {
	Registry      *recording.Registry
	Sessions      *session.Table
	RecordingsDir string
	EventsEnabled bool
}

// NewContext constructs a Context with fresh registry and session table.
func NewContext(recordingsDir string, eventsEnabled bool) *Context {
	return &Context{
		Registry:      recording.NewRegistry(),
		Sessions:      session.NewTable(),
		RecordingsDir: recordingsDir,
		EventsEnabled: eventsEnabled,
	}
}
