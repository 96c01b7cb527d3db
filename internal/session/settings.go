package session

import "context"

// Persistent app-state keys outside the session snapshot.
const (
	KeySettings       = "userQuizSettings"
	KeyLastLoadedFile = "lastLoadedFileName"
)

// SaveSettings persists s as the user's quiz settings and adopts them for
// the next Restart.
func (e *Engine) SaveSettings(ctx context.Context, s Settings) error {
	e.state.Settings = s
	return e.kv.Put(ctx, KeySettings, s)
}

// LoadSettings returns the stored settings, or def if none are stored.
// The result also becomes the engine's current settings when idle.
func (e *Engine) LoadSettings(ctx context.Context, def Settings) (Settings, error) {
	s := def
	ok, err := e.kv.Get(ctx, KeySettings, &s)
	if err != nil {
		return def, err
	}
	if !ok {
		s = def
	}
	s.Timers = s.Timers.Normalized()
	if e.state.Phase == PhaseIdle {
		e.state.Settings = s
	}
	return s, nil
}
