package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies nav_id and provider from the event context onto the event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if navID := GetNavID(ctx); navID != "" {
		e.Str("nav_id", navID)
	}

	if provider := GetProvider(ctx); provider != "" {
		e.Str("provider", provider)
	}
}
