package codereview

import (
	"context"

	"github.com/loayabdalslam/Orchestrator/pkg/changetracker"
)

// Snapshot maps each path of a batch to its current on-disk content. Paths
// that do not exist yet map to "".
type Snapshot map[string]string

// Decision is the single verdict for a whole batch.
type Decision struct {
	Approved bool
}

// Changeset is what a reviewer is shown: one combined unified diff plus a
// per-file line summary, both in batch order.
type Changeset struct {
	Diff  string                    `json:"diff"`
	Files []changetracker.FileStats `json:"files"`
}

// Reviewer gives one yes/no answer for a changeset.
type Reviewer interface {
	Review(ctx context.Context, changes *Changeset) (bool, error)
}

// ContentSource reads the current content of a batch path. Missing files
// return "" and no error.
type ContentSource interface {
	Read(path string) (string, error)
}

// AutoReviewer answers every review with a fixed verdict.
type AutoReviewer struct {
	Approve bool
}

// Review returns the configured verdict.
func (r *AutoReviewer) Review(ctx context.Context, changes *Changeset) (bool, error) {
	return r.Approve, nil
}
