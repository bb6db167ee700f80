package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormStorage(t *testing.T) *GormStorage {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Sale{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewGormStorage(db)
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestGormStorage_CreateAndRead(t *testing.T) {
	store := newGormStorage(t)
	ctx := context.Background()

	sale := &Sale{ProductID: "P1", Date: mustDate(t, "2024-01-15"), Sales: 10}
	require.NoError(t, store.Create(ctx, sale))
	assert.NotZero(t, sale.ID)

	got, err := store.Read(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, *sale, *got)

	_, err = store.Read(ctx, sale.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Create(ctx, sale), ErrIDAssigned)
}

func TestGormStorage_FindConjunction(t *testing.T) {
	store := newGormStorage(t)
	ctx := context.Background()

	rows := []*Sale{
		{ProductID: "P1", Date: mustDate(t, "2024-01-01"), Sales: 5},
		{ProductID: "P1", Date: mustDate(t, "2024-02-01"), Sales: 7},
		{ProductID: "P2", Date: mustDate(t, "2024-01-01"), Sales: 3},
	}
	for _, r := range rows {
		require.NoError(t, store.Create(ctx, r))
	}

	p1 := "P1"
	start := mustDate(t, "2024-01-15")
	got, err := store.Find(ctx, Filter{ProductID: &p1, StartDate: &start})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *rows[1], *got[0])

	day := mustDate(t, "2024-01-01")
	got, err = store.Find(ctx, Filter{StartDate: &day, EndDate: &day})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[0].ID, got[0].ID)
	assert.Equal(t, rows[2].ID, got[1].ID)

	got, err = store.Find(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestGormStorage_FindEmptyIsNotNil(t *testing.T) {
	store := newGormStorage(t)

	got, err := store.Find(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGormStorage_Update(t *testing.T) {
	store := newGormStorage(t)
	ctx := context.Background()

	sale := &Sale{ProductID: "P1", Date: mustDate(t, "2024-01-15"), Sales: 10}
	require.NoError(t, store.Create(ctx, sale))

	updated, err := store.Update(ctx, sale.ID, SaleUpdate{Sales: intPtr(99)}.ApplyTo)
	require.NoError(t, err)
	assert.Equal(t, Sale{ID: sale.ID, ProductID: "P1", Date: sale.Date, Sales: 99}, *updated)

	got, err := store.Read(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)
}

func TestGormStorage_UpdateRollsBackOnApplyError(t *testing.T) {
	store := newGormStorage(t)
	ctx := context.Background()

	sale := &Sale{ProductID: "P1", Date: mustDate(t, "2024-01-15"), Sales: 10}
	require.NoError(t, store.Create(ctx, sale))

	boom := errors.New("boom")
	_, err := store.Update(ctx, sale.ID, func(s *Sale) error {
		s.Sales = 1
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Read(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Sales)

	_, err = store.Update(ctx, 9999, SaleUpdate{}.ApplyTo)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStorage_Delete(t *testing.T) {
	store := newGormStorage(t)
	ctx := context.Background()

	sale := &Sale{ProductID: "P1", Date: mustDate(t, "2024-01-15"), Sales: 10}
	require.NoError(t, store.Create(ctx, sale))

	require.NoError(t, store.Delete(ctx, sale.ID))
	assert.ErrorIs(t, store.Delete(ctx, sale.ID), ErrNotFound)

	_, err := store.Read(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
