package debug

import (
	"context"
	"database/sql"

	"github.com/mbetancur/basinview/internal/logger"
)

// PruneRuns deletes all persisted runs (dev-only helper).
func PruneRuns(db *sql.DB) error {
	ctx := context.Background()
	res, err := db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n >= 0 {
		logger.Infof("[Debug] Pruned runs rows: %d", n)
	}
	return nil
}
