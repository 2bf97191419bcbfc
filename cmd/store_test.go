package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/planner-contacts/internal/config"
	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/store"
)

func TestInitStore_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: dsn,
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	// Migrated: the runs table is usable straight away.
	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestInitStore_SQLiteDefaultDSN(t *testing.T) {
	// When DatabaseURL is empty, initStore should default to "planners.db".
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: "",
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	_, statErr := os.Stat(filepath.Join(tmpDir, "planners.db"))
	assert.NoError(t, statErr)
}

func TestInitStore_UnknownDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "mysql",
		},
	}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestInitStore_PostgresBadURL(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "postgres",
			DatabaseURL: "://not a url",
		},
	}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	assert.Error(t, err)
}

type recordingResolver struct {
	calls []string
}

func (r *recordingResolver) Resolve(_ context.Context, rec model.PlannerRecord) model.PlannerRecord {
	r.calls = append(r.calls, rec.Name)
	return rec.WithEmail("found@" + rec.Name + ".com")
}

func TestSkipResolved(t *testing.T) {
	next := &recordingResolver{}
	r := skipResolved{next}

	kept := r.Resolve(context.Background(), model.PlannerRecord{Name: "done", Email: "old@done.com"})
	assert.Equal(t, "old@done.com", kept.Email)

	got := r.Resolve(context.Background(), model.PlannerRecord{Name: "acme", Website: "https://acme.com"})
	assert.Equal(t, "found@acme.com", got.Email)
	assert.Equal(t, []string{"acme"}, next.calls)
}

func TestStubRecords(t *testing.T) {
	stubs := []model.ListingStub{
		{Name: "A", ProfileURL: "https://dir.example/a"},
		{Name: "A", ProfileURL: "https://dir.example/a"},
	}

	records := stubRecords(stubs)
	require.Len(t, records, 2)
	assert.Equal(t, model.PlannerRecord{Name: "A", ProfileURL: "https://dir.example/a"}, records[1])
}
