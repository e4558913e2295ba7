package notify

import (
	"context"
	"io"

	"lifeflow/internal/service"
)

// Cue is a short audible signal.
type Cue interface {
	Play()
}

// Bell rings the terminal bell.
type Bell struct {
	Out io.Writer
}

func (b Bell) Play() {
	_, _ = b.Out.Write([]byte{'\a'})
}

type cued struct {
	service.Notifier
	cue Cue
}

// WithCue plays cue after every alert n actually delivered.
func WithCue(n service.Notifier, cue Cue) service.Notifier {
	if cue == nil {
		return n
	}
	return cued{Notifier: n, cue: cue}
}

func (c cued) Notify(ctx context.Context, n service.Notification) bool {
	if !c.Notifier.Notify(ctx, n) {
		return false
	}
	c.cue.Play()
	return true
}
