package hydrate

// NotificationSink receives out-of-band events the engine cannot surface
// through a callback return value. The projection host typically forwards
// invalidations to the filesystem driver so stale kernel-side state is
// flushed; skipped names are logged for the operator.
//
// Sink methods may be called while the engine holds internal locks and must
// not call back into the engine.
type NotificationSink interface {
	// PathInvalidated reports that cached state for a path was discarded.
	// Reason is one of "tag_changed", "size_changed", "not_found".
	PathInvalidated(path string, reason string)

	// NameSkipped reports a remote child omitted from an enumeration
	// because its name cannot be represented locally.
	NameSkipped(dir string, name string, err error)
}

type noopSink struct{}

func (noopSink) PathInvalidated(string, string)   {}
func (noopSink) NameSkipped(string, string, error) {}
