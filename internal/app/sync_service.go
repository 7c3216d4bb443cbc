package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// SyncApp implements primary.SyncService: it replaces the local read
// mirror with the current remote backlog so search, backlog listing,
// and triage keep working offline.
type SyncApp struct {
	workspace secondary.WorkspaceRepository
	mirror    secondary.MirrorStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewSyncApp creates the sync service.
func NewSyncApp(workspace secondary.WorkspaceRepository, mirror secondary.MirrorStore, logger *zap.Logger) *SyncApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncApp{workspace: workspace, mirror: mirror, logger: logger, now: time.Now}
}

// Sync fetches the full remote backlog and atomically replaces the
// mirror. The old mirror survives any failure.
func (s *SyncApp) Sync(ctx context.Context) *primary.Envelope {
	env := primary.NewEnvelope("")

	records, err := s.workspace.Query(ctx, secondary.RequestFilter{})
	if err != nil {
		env.Summary = "Sync failed"
		env.AddError(err.Error())
		if errors.Is(err, secondary.ErrUnreachable) {
			env.AddNextAction("retry `aide sync` when the workspace is reachable")
		}
		return env
	}

	snapshot := &secondary.MirrorSnapshot{
		SyncedAt: s.now().UTC().Format(time.RFC3339),
		Count:    len(records),
		Requests: records,
	}
	if err := s.mirror.SaveMirror(snapshot); err != nil {
		env.Summary = "Sync failed"
		env.AddError(fmt.Sprintf("failed to save mirror: %v", err))
		return env
	}

	s.logger.Info("mirror refreshed", zap.Int("count", len(records)))
	env.Summary = fmt.Sprintf("Synced %d requests to the local mirror", len(records))
	env.Result = map[string]any{"count": snapshot.Count, "synced_at": snapshot.SyncedAt}
	return env
}
