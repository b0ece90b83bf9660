package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/docket/internal/db"
	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentUpdate_SingleWriterWins races many writers that all loaded
// the same version. Exactly one update may land; every other writer must see
// ErrStateConflict rather than overwrite.
func TestConcurrentUpdate_SingleWriterWins(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	repo, tpl, inst := assignmentTestSetup(t, database)
	ctx := context.Background()

	a := testutil.NewTestAssignment(tpl.ID, "emp-1", inst.ID, testutil.WithSentAt(testutil.FixtureNow))
	require.NoError(t, repo.Create(ctx, a))

	uow := db.NewSQLiteUnitOfWork(database)
	const writers = 8
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < writers; i++ {
		stale, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)

		wg.Add(1)
		go func(n int, mine *domain.Assignment) {
			defer wg.Done()
			<-start
			err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				if n%2 == 0 {
					if err := mine.RecordReminder(testutil.FixtureNow); err != nil {
						return err
					}
				} else if err := mine.MarkRefused("", testutil.FixtureNow); err != nil {
					return err
				}
				return NewSQLiteAssignmentRepo(tx).Update(ctx, mine)
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrStateConflict):
				conflicts.Add(1)
			default:
				t.Errorf("writer %d: unexpected error: %v", n, err)
			}
		}(i, stale)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), conflicts.Load())

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

// TestConcurrentRecordFire_Once races the same fired-step marker.
func TestConcurrentRecordFire_Once(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	repo, tpl, inst := assignmentTestSetup(t, database)
	ctx := context.Background()

	a := testutil.NewTestAssignment(tpl.ID, "emp-1", inst.ID, testutil.WithSentAt(testutil.FixtureNow))
	require.NoError(t, repo.Create(ctx, a))

	f := domain.FiredStep{Cycle: 1, DayOffset: 3, Action: domain.ActionRemind, FiredAt: testutil.FixtureNow}
	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.RecordFire(ctx, a.ID, f); err == nil {
				ok.Add(1)
			} else if !errors.Is(err, domain.ErrStateConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
}
