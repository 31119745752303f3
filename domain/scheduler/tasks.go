package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/kindredhq/kindred/pkg/logger"
)

// RosterReconcileTask repairs drift between families.members_count and the
// actual family_members rows. The write paths keep the two in sync inside
// their transactions; this sweep is the watchdog for anything that slipped
// through (manual fixes, partial restores).
type RosterReconcileTask struct {
	db  *bun.DB
	log *slog.Logger
}

// NewRosterReconcileTask creates a new roster reconciliation task
func NewRosterReconcileTask(db *bun.DB, log *slog.Logger) *RosterReconcileTask {
	return &RosterReconcileTask{
		db:  db,
		log: log.With(logger.Scope("scheduler.roster_reconcile")),
	}
}

// Run recounts memberships per family and fixes any mismatched counters.
func (t *RosterReconcileTask) Run(ctx context.Context) error {
	start := time.Now()

	res, err := t.db.ExecContext(ctx, `
		UPDATE families f
		SET members_count = m.actual, updated_at = now()
		FROM (
			SELECT family_id, count(*) AS actual
			FROM family_members
			WHERE family_id IS NOT NULL
			GROUP BY family_id
		) m
		WHERE f.id = m.family_id AND f.members_count <> m.actual
	`)
	if err != nil {
		t.log.Error("failed to reconcile member counts", logger.Error(err))
		return err
	}
	corrected, _ := res.RowsAffected()

	// Families whose roster emptied out entirely have no row in the recount.
	res, err = t.db.ExecContext(ctx, `
		UPDATE families f
		SET members_count = 0, updated_at = now()
		WHERE f.members_count <> 0
		  AND NOT EXISTS (
			SELECT 1 FROM family_members fm WHERE fm.family_id = f.id
		  )
	`)
	if err != nil {
		t.log.Error("failed to zero empty rosters", logger.Error(err))
		return err
	}
	zeroed, _ := res.RowsAffected()

	if corrected+zeroed > 0 {
		t.log.Warn("corrected members_count drift",
			slog.Int64("corrected", corrected),
			slog.Int64("zeroed", zeroed),
			slog.Duration("duration", time.Since(start)))
	} else {
		t.log.Debug("roster counts consistent",
			slog.Duration("duration", time.Since(start)))
	}
	return nil
}
