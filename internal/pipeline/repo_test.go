package pipeline_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/pipeline"
	"github.com/ariefcatur/go-custom-goods/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoAgainstPostgres(t *testing.T) {
	db := testutil.Postgres(t)
	repo := &pipeline.Repo{DB: db}
	ctx := context.Background()

	stages, err := repo.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 7)
	assert.Equal(t, "Intake", stages[0].SectionName)
	assert.Equal(t, "Cancelled", stages[6].SectionName)

	t.Run("create rolls back on unknown stage", func(t *testing.T) {
		_, err := repo.CreateCustomer(ctx, pipeline.NewCustomer{Name: "Ghost", StageID: intp(99)})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		all, err := repo.ListCustomers(ctx)
		require.NoError(t, err)
		for _, c := range all {
			assert.NotEqual(t, "Ghost", c.Name)
		}
	})

	t.Run("move replaces the assignment", func(t *testing.T) {
		c, err := repo.CreateCustomer(ctx, pipeline.NewCustomer{Name: "Ana", StageID: intp(1)})
		require.NoError(t, err)

		m, err := repo.MoveCustomer(ctx, c.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, *m.FromStageID)
		assert.Equal(t, "Payment", *m.Customer.SectionName)

		var rows int
		require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM customer_pipeline WHERE customer_id=$1`, c.ID).Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("concurrent moves leave one stage", func(t *testing.T) {
		c, err := repo.CreateCustomer(ctx, pipeline.NewCustomer{Name: "Race"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 1; i <= 7; i++ {
			wg.Add(1)
			go func(stage int) {
				defer wg.Done()
				_, err := repo.MoveCustomer(ctx, c.ID, stage)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		var rows int
		require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM customer_pipeline WHERE customer_id=$1`, c.ID).Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("delete cascades", func(t *testing.T) {
		c, err := repo.CreateCustomer(ctx, pipeline.NewCustomer{Name: "Gone", StageID: intp(3)})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteCustomer(ctx, c.ID))
		assert.ErrorIs(t, repo.DeleteCustomer(ctx, c.ID), apperr.ErrNotFound)

		var rows int
		require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM customer_pipeline WHERE customer_id=$1`, c.ID).Scan(&rows))
		assert.Zero(t, rows)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := repo.MoveCustomer(ctx, 424242, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = repo.UpdateCustomer(ctx, 424242, pipeline.CustomerUpdate{Name: "x"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
