package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/aide/internal/ports/primary"
	"github.com/example/aide/internal/ports/secondary"
)

// maxFlushRetries caps how often one queued write may bounce before it
// is marked permanently failed.
const maxFlushRetries = 5

// QueueApp implements primary.QueueService: replay the offline queue in
// FIFO order. Delivery is at-least-once; create replays carry the entry
// ID as an idempotency token so retries cannot duplicate records.
type QueueApp struct {
	queue     secondary.WriteQueue
	workspace secondary.WorkspaceRepository
	logger    *zap.Logger
}

// NewQueueApp creates the queue service.
func NewQueueApp(queue secondary.WriteQueue, workspace secondary.WorkspaceRepository, logger *zap.Logger) *QueueApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueApp{queue: queue, workspace: workspace, logger: logger}
}

// Flush replays pending writes in order. Entries leave the queue only
// on remote acknowledgement; a transient failure requeues the entry at
// the tail and replay moves on to the next one, while a hard failure
// (malformed payload, remote rejection) marks the entry failed and
// stops the run so the backlog can be inspected before anything later
// is delivered on top of it.
func (s *QueueApp) Flush(ctx context.Context) *primary.Envelope {
	env := primary.NewEnvelope("")
	result := &primary.FlushResult{}

	pending, err := s.queue.Pending(ctx)
	if err != nil {
		env.Summary = "Queue flush failed"
		env.AddError(err.Error())
		return env
	}
	if len(pending) == 0 {
		env.Summary = "Queue is empty"
		env.Result = result
		return env
	}

	for _, write := range pending {
		err := s.replay(ctx, write)
		switch {
		case err == nil:
			if ackErr := s.queue.Ack(ctx, write.ID); ackErr != nil {
				env.AddError(fmt.Sprintf("write %s delivered but not acknowledged: %v", write.ID, ackErr))
				env.Summary = flushSummary(result)
				env.Result = result
				return env
			}
			result.Succeeded++

		case errors.Is(err, secondary.ErrUnreachable):
			if write.RetryCount+1 >= maxFlushRetries {
				s.fail(ctx, write.ID, fmt.Sprintf("retry limit reached: %v", err), result)
				continue
			}
			if rqErr := s.queue.Requeue(ctx, write.ID); rqErr != nil {
				env.AddError(fmt.Sprintf("failed to requeue %s: %v", write.ID, rqErr))
				continue
			}
			result.Requeued++

		default:
			// Malformed payload or remote rejection: retrying cannot
			// help, and later entries may build on this one.
			s.fail(ctx, write.ID, err.Error(), result)
			env.AddError(fmt.Sprintf("write %s failed permanently: %v; flush stopped", write.ID, err))
			env.AddNextAction("inspect failures with `aide queue list`")
			env.Summary = flushSummary(result)
			env.Result = result
			return env
		}
	}

	env.Summary = flushSummary(result)
	env.Result = result
	if result.Requeued > 0 {
		env.AddError(fmt.Sprintf("workspace unreachable; %d writes requeued", result.Requeued))
		env.AddNextAction("run `aide queue flush` again when back online")
	}
	if result.Failed > 0 {
		env.AddError(fmt.Sprintf("%d queued writes failed permanently", result.Failed))
		env.AddNextAction("inspect failures with `aide queue list`")
	}
	return env
}

func (s *QueueApp) fail(ctx context.Context, id, reason string, result *primary.FlushResult) {
	s.logger.Warn("queued write failed permanently", zap.String("id", id), zap.String("reason", reason))
	if err := s.queue.Fail(ctx, id, reason); err != nil {
		s.logger.Error("failed to mark queue entry failed", zap.Error(err))
		return
	}
	result.Failed++
	result.FailedIDs = append(result.FailedIDs, id)
}

// replay delivers one queued write. Create replays reuse the entry ID
// as the idempotency token, so a write that succeeded before a crash
// cannot produce a duplicate record.
func (s *QueueApp) replay(ctx context.Context, write *secondary.QueuedWrite) error {
	switch write.Operation {
	case secondary.QueueOpCreate:
		record := &secondary.RequestRecord{}
		if err := json.Unmarshal([]byte(write.Payload), record); err != nil {
			return fmt.Errorf("malformed create payload: %w", err)
		}
		_, err := s.workspace.Create(ctx, record, write.ID)
		return err

	case secondary.QueueOpUpdate:
		fields := map[string]string{}
		if err := json.Unmarshal([]byte(write.Payload), &fields); err != nil {
			return fmt.Errorf("malformed update payload: %w", err)
		}
		_, err := s.workspace.Update(ctx, write.TargetID, fields)
		return err

	default:
		return fmt.Errorf("unknown queued operation %q", write.Operation)
	}
}

func flushSummary(result *primary.FlushResult) string {
	return fmt.Sprintf("Flushed queue: %d delivered, %d requeued, %d failed",
		result.Succeeded, result.Requeued, result.Failed)
}

// List returns every queue entry for inspection.
func (s *QueueApp) List(ctx context.Context) *primary.Envelope {
	env := primary.NewEnvelope("")

	writes, err := s.queue.All(ctx)
	if err != nil {
		env.Summary = "Queue listing failed"
		env.AddError(err.Error())
		return env
	}

	env.Summary = fmt.Sprintf("%d queued writes", len(writes))
	env.Result = writes
	if len(writes) > 0 {
		env.AddNextAction("run `aide queue flush` to deliver pending writes")
	}
	return env
}
