package store

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planner-contacts/internal/config"
	"github.com/sells-group/planner-contacts/internal/model"
)

// ErrRunNotFound is returned (wrapped) when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store persists scrape run history and the records each run produced.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, startPage, maxPage int) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary model.RunSummary) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Records
	SaveRecords(ctx context.Context, runID string, records []model.PlannerRecord) error
	ListRecords(ctx context.Context, runID string) ([]model.PlannerRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "planners.db"
		}
		st, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := NewPostgres(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}

const defaultListLimit = 100

func listLimit(filter RunFilter) int {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}

func failMessage(cause error) string {
	if cause == nil {
		return "unknown error"
	}
	return cause.Error()
}
