package port

import (
	"context"
	"time"

	"separation-service/ddd/domain/vo"
)

// StageRunner executes one external collaborator process as an awaitable unit.
// A nonzero exit code is reported through the outcome, not the error; the error
// is reserved for spawn failures and context cancellation. The runner imposes
// no timeout of its own.
type StageRunner interface {
	Run(ctx context.Context, cmd vo.StageCommand) (vo.StageOutcome, error)
}

// CleanupScheduler registers deferred best-effort deletions decoupled from the
// request lifetime. Fire-and-forget: pending deletions do not survive a restart.
type CleanupScheduler interface {
	ScheduleDeletion(path string, delay time.Duration)
	ScheduleDirectoryDeletion(path string, delay time.Duration)
}
