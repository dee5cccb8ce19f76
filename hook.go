package cedar

import "github.com/balrampariyarath/cedar-OS/events"

// Hook receives session lifecycle callbacks. It is an alias for
// events.Hook so callers wiring a session do not need to import the
// events package directly.
type Hook = events.Hook

// LoggingHook returns a hook writing every callback to slog.
func LoggingHook() Hook { return events.LoggingHook() }

// NewCompositeHook fans callbacks out to several hooks in order.
func NewCompositeHook(hooks ...Hook) Hook { return events.NewCompositeHook(hooks...) }
