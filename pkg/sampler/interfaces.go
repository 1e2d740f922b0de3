package sampler

import "context"

// Sampler is the interface sampler backends must implement.
type Sampler interface {
	// Pick runs one sampling operation for the given role and returns the
	// resulting state. The requested side is nil in the returned snapshot
	// when the user cancelled the picker; that is a successful call.
	Pick(ctx context.Context, role Role) (Snapshot, error)

	// State returns the backend's current colour state. Called once at
	// startup to seed the UI mirror.
	State(ctx context.Context) (Snapshot, error)

	// ListICCProfiles returns the colour profiles known to the backend.
	ListICCProfiles(ctx context.Context) ([]ICCProfile, error)

	// SelectICCProfile switches the active colour profile by name.
	SelectICCProfile(ctx context.Context, name string) error

	// SelectedICCProfile returns the active profile name, or "" when the
	// backend has no notion of a selected profile.
	SelectedICCProfile(ctx context.Context) (string, error)
}

// Watcher is implemented by backends that push state updates without a
// per-pick request, e.g. while continuous sampling mode is active. The
// channel closes when the backend stops or ctx is cancelled.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Snapshot, error)
}

// ProfileWatcher is implemented by backends that push colour profile
// changes made outside the application (e.g. from system settings). The
// channel delivers the new active profile name.
type ProfileWatcher interface {
	WatchICCProfile(ctx context.Context) (<-chan string, error)
}
