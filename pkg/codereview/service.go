package codereview

import (
	"context"
	"fmt"

	"github.com/loayabdalslam/Orchestrator/pkg/changetracker"
	"github.com/loayabdalslam/Orchestrator/pkg/logging"
	"github.com/loayabdalslam/Orchestrator/pkg/types"
)

// Gate asks a reviewer to approve or reject a whole batch at once. It never
// touches the filesystem beyond reading the current content.
type Gate struct {
	reviewer Reviewer
	logger   *logging.Logger
}

// NewGate creates a review gate.
func NewGate(reviewer Reviewer, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gate{reviewer: reviewer, logger: logger.Component("ReviewGate")}
}

// TakeSnapshot reads the current content of every batch path. Unreadable
// paths are treated as new files.
func (g *Gate) TakeSnapshot(src ContentSource, batch *types.CodeBatch) Snapshot {
	snap := make(Snapshot, batch.Len())
	for _, path := range batch.Paths() {
		content, err := src.Read(path)
		if err != nil {
			g.logger.Warning("Could not read %s, diffing against empty content: %v", path, err)
			content = ""
		}
		snap[path] = content
	}
	return snap
}

// BuildChangeset diffs the batch against the snapshot in batch order.
func BuildChangeset(batch *types.CodeBatch, snap Snapshot) (*Changeset, error) {
	changes := make([]changetracker.FileChange, 0, batch.Len())
	stats := make([]changetracker.FileStats, 0, batch.Len())
	for _, path := range batch.Paths() {
		after, _ := batch.Get(path)
		before := snap[path]
		changes = append(changes, changetracker.FileChange{Path: path, Before: before, After: after})
		stats = append(stats, changetracker.GetStats(path, before, after))
	}

	diff, err := changetracker.CombinedDiff(changes)
	if err != nil {
		return nil, err
	}
	return &Changeset{Diff: diff, Files: stats}, nil
}

// Review snapshots the batch, shows the combined diff and returns the
// reviewer's verdict. An empty batch is still put to the reviewer.
func (g *Gate) Review(ctx context.Context, batch *types.CodeBatch, src ContentSource) (Decision, error) {
	snap := g.TakeSnapshot(src, batch)

	changes, err := BuildChangeset(batch, snap)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to build diff: %w", err)
	}

	for _, s := range changes.Files {
		g.logger.Debug("%s: +%d -%d", s.Path, s.Additions, s.Deletions)
	}
	g.logger.Info("Requesting review of %d file(s)", batch.Len())

	approved, err := g.reviewer.Review(ctx, changes)
	if err != nil {
		return Decision{}, fmt.Errorf("review failed: %w", err)
	}

	if approved {
		g.logger.Success("Changes approved")
	} else {
		g.logger.Warning("Changes rejected")
	}
	return Decision{Approved: approved}, nil
}
