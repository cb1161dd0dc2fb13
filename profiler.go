package taskcore

import "github.com/google/uuid"

// ProfilerHandle identifies a profiler session created by CreateProfiler.
// Profiler integration is optional and expected to be compiled out of
// release builds; taskcore's own worker loop and Define/Launch/Complete
// paths do not depend on it existing.
type ProfilerHandle struct {
	id   uuid.UUID
	name string
}

// ID returns the profiler's stable identity, suitable for correlating
// spans emitted by concurrent pools in external tooling.
func (h ProfilerHandle) ID() uuid.UUID { return h.id }

// CreateProfiler creates a named profiler handle. A uuid identity lets
// external tooling correlate spans across process restarts, which a bare
// incrementing counter cannot.
func CreateProfiler(name string) (ProfilerHandle, error) {
	return ProfilerHandle{id: uuid.New(), name: name}, nil
}

// DeleteProfiler releases a profiler handle. taskcore's profiler is a
// pure identity tag with no backing OS resource, so this is a no-op kept
// for symmetry with CreateProfiler.
func DeleteProfiler(ProfilerHandle) {}
