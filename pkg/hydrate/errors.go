package hydrate

import "errors"

// These errors classify engine-level failure conditions. The projection host
// checks for them with errors.Is and maps them to the error codes its
// filesystem driver understands; remote-boundary conditions (unavailable,
// range unsatisfiable) pass through from pkg/remote unchanged.
var (
	// ErrPathNotFound indicates no matching namespace entry exists even
	// after enumerating the parent directory.
	//
	// Host Mapping:
	//   - FUSE: ENOENT
	//   - Windows projection: ERROR_FILE_NOT_FOUND
	ErrPathNotFound = errors.New("path not found")

	// ErrNotDirectory indicates a directory operation was invoked on a
	// file path.
	//
	// Host Mapping:
	//   - FUSE: ENOTDIR
	ErrNotDirectory = errors.New("not a directory")

	// ErrIsDirectory indicates a file content operation was invoked on a
	// directory path. Directories hydrate child listings, never content.
	//
	// Host Mapping:
	//   - FUSE: EISDIR
	ErrIsDirectory = errors.New("is a directory")

	// ErrStaleContent indicates the remote object no longer matches the
	// cached placeholder (it shrank or changed under a listed size). The
	// entry has been invalidated; retrying after re-enumeration may
	// succeed.
	//
	// Host Mapping:
	//   - FUSE: EIO
	ErrStaleContent = errors.New("remote content changed under cached placeholder")
)
