package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

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

// recordingAudit captures audit entries so tests can assert every lifecycle
// transition leaves a ledger trace.
type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) all() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *recordingAudit) lastEventType(t *testing.T) string {
	t.Helper()
	entries := r.all()
	require.NotEmpty(t, entries)
	return entries[len(entries)-1].EventType
}

func strPtr(s string) *string { return &s }

func districtAdmin(tenantID string) authz.Actor {
	return authz.Actor{ID: uuid.NewString(), Role: models.RoleDistrictAdmin, TenantID: tenantID, Email: "district@example.com"}
}

func campusAdmin(tenantID, campusID string) authz.Actor {
	return authz.Actor{ID: uuid.NewString(), Role: models.RoleCampusAdmin, TenantID: tenantID, CampusID: &campusID, Email: "campus@example.com"}
}

func viewer(tenantID string) authz.Actor {
	return authz.Actor{ID: uuid.NewString(), Role: models.RoleViewer, TenantID: tenantID, Email: "viewer@example.com"}
}

func masterAdmin(tenantID string) authz.Actor {
	return authz.Actor{ID: uuid.NewString(), Role: models.RoleMasterAdmin, TenantID: tenantID, Email: "master@example.com"}
}
