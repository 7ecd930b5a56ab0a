package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.Campus{},
		&models.UserProfile{},
		&models.Record{},
		&models.AuditEvent{},
	))
	return db
}

func seedRecord(t *testing.T, db *gorm.DB, record models.Record) models.Record {
	t.Helper()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.RecordStatusActive
	}
	require.NoError(t, db.Create(&record).Error)
	return record
}

func campusPtr(code string) *string { return &code }

func TestRecordRepositoryTenantScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	mine := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Jordan Reyes"})
	seedRecord(t, db, models.Record{TenantID: "other", SubjectName: "Casey Vu"})

	records, total, err := repo.List(ctx, RecordFilter{TenantID: "bisd", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, mine.ID, records[0].ID)

	// A row in another tenant looks exactly like a missing row.
	_, err = repo.GetByID(ctx, "bisd", "nonexistent")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.GetByID(ctx, "other", mine.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	active := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Jordan Reyes", CampusID: campusPtr("001"), ExpirationDate: &future})
	expired := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Casey Vu", CampusID: campusPtr("002"), ExpirationDate: &past})
	inactive := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Morgan Ellis", Status: models.RecordStatusInactive})

	records, total, err := repo.List(ctx, RecordFilter{TenantID: "bisd", Status: models.RecordStatusActive, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, active.ID, records[0].ID)

	records, total, err = repo.List(ctx, RecordFilter{TenantID: "bisd", Status: RecordFilterExpired, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, expired.ID, records[0].ID)

	records, total, err = repo.List(ctx, RecordFilter{TenantID: "bisd", Status: models.RecordStatusInactive, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, inactive.ID, records[0].ID)

	records, total, err = repo.List(ctx, RecordFilter{TenantID: "bisd", Search: "reyes", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, active.ID, records[0].ID)

	records, total, err = repo.List(ctx, RecordFilter{TenantID: "bisd", CampusID: "002", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, expired.ID, records[0].ID)
}

func TestRecordRepositoryDAEPCampusSelectsFlaggedRecords(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	daepAtOtherCampus := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Jordan Reyes", CampusID: campusPtr("001"), IsDAEP: true})
	seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Casey Vu", CampusID: campusPtr("001")})
	assignedToDAEP := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Morgan Ellis", CampusID: campusPtr(models.DAEPCampusCode), IsDAEP: true})

	records, total, err := repo.List(ctx, RecordFilter{TenantID: "bisd", CampusID: models.DAEPCampusCode, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	ids := []string{records[0].ID, records[1].ID}
	require.Contains(t, ids, daepAtOtherCampus.ID)
	require.Contains(t, ids, assignedToDAEP.ID)
}

func TestRecordRepositorySoftDeleteLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	record := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Jordan Reyes"})
	deletedAt := time.Now().Truncate(time.Second)

	require.NoError(t, repo.SoftDelete(ctx, "bisd", record.ID, deletedAt))

	// Soft-deleted rows vanish from normal listings and updates.
	_, total, err := repo.List(ctx, RecordFilter{TenantID: "bisd", PageSize: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	_, err = repo.Update(ctx, "bisd", record.ID, map[string]interface{}{"description": "x"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting again is a no-op reported as not found.
	require.ErrorIs(t, repo.SoftDelete(ctx, "bisd", record.ID, time.Now()), gorm.ErrRecordNotFound)

	deleted, err := repo.ListDeleted(ctx, "bisd")
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.NotNil(t, deleted[0].DeletedAt)

	restored, err := repo.Restore(ctx, "bisd", record.ID)
	require.NoError(t, err)
	require.Nil(t, restored.DeletedAt)
	require.Equal(t, models.RecordStatusActive, restored.Status, "restore must not change the stored status")

	// Restore on a live row reports not found.
	_, err = repo.Restore(ctx, "bisd", record.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordRepositoryPermanentDeleteConditional(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	record := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Jordan Reyes"})
	deletedAt := time.Now().Add(-6 * 365 * 24 * time.Hour).Truncate(time.Second)
	require.NoError(t, repo.SoftDelete(ctx, "bisd", record.ID, deletedAt))

	// A stale observation does not delete anything.
	removed, err := repo.PermanentlyDelete(ctx, "bisd", record.ID, deletedAt.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, removed)

	removed, err = repo.PermanentlyDelete(ctx, "bisd", record.ID, deletedAt)
	require.NoError(t, err)
	require.True(t, removed)

	deleted, err := repo.ListDeleted(ctx, "bisd")
	require.NoError(t, err)
	require.Empty(t, deleted)
}

func TestRecordRepositoryUpdateKeepsTenantImmutable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	record := seedRecord(t, db, models.Record{TenantID: "bisd", SubjectName: "Jordan Reyes"})

	updated, err := repo.Update(ctx, "bisd", record.ID, map[string]interface{}{
		"tenant_id":   "hijack",
		"description": "updated",
	})
	require.NoError(t, err)
	require.Equal(t, "bisd", updated.TenantID)
	require.Equal(t, "updated", updated.Description)
}
