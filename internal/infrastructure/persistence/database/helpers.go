// Package database provides database helper functions
package database

import (
	"fmt"
	"time"

	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
)

// SlowQueryThreshold is the duration above which a statement is logged as slow.
const SlowQueryThreshold = 250 * time.Millisecond

// TestConnection runs a trivial query against an open connection.
func TestConnection(db *DB) error {
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("connection test query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("unexpected query result: %d", result)
	}
	return nil
}

// CheckAndLogSlowQuery logs on the storage channel when a query exceeds
// SlowQueryThreshold. Opening a connection gets three times the budget.
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	threshold := SlowQueryThreshold
	if query == "DATABASE_CONNECTION" {
		threshold *= 3
	}
	if duration > threshold {
		logger.Storage().Warn("Slow query detected", "query", query, "duration", duration, "threshold", threshold)
	}
}
