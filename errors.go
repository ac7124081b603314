package photos

import (
	"errors"
	"fmt"
)

// ErrIndexingInProgress is returned by New while the remote library has not
// finished indexing. The service becomes usable once indexing completes;
// retry after a delay.
var ErrIndexingInProgress = errors.New("photo library has not finished indexing")

// IsIndexingInProgress reports whether err means the library is not ready yet.
func IsIndexingInProgress(err error) bool { return errors.Is(err, ErrIndexingInProgress) }

func errIndexing(detail string) error {
	return fmt.Errorf("%w: %s", ErrIndexingInProgress, detail)
}

// ErrOrphanMaster is returned when a page contains a master record with no
// matching asset record, which indicates store inconsistency. See
// WithSkipOrphanMasters for the lenient alternative.
var ErrOrphanMaster = errors.New("master record has no matching asset record")

// ErrVersionNotFound is returned by Download for a version name the asset
// does not carry.
var ErrVersionNotFound = errors.New("version not available")
