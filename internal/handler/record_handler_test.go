package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/service"
)

// stubRecordService returns canned results so handler tests can exercise the
// HTTP error mapping without a database.
type stubRecordService struct {
	err      error
	response dto.RecordResponse
}

func (s *stubRecordService) List(context.Context, authz.Actor, dto.RecordListRequest) (dto.RecordListResponse, error) {
	return dto.RecordListResponse{}, s.err
}

func (s *stubRecordService) Get(context.Context, authz.Actor, string, string) (dto.RecordResponse, error) {
	return s.response, s.err
}

func (s *stubRecordService) Create(context.Context, authz.Actor, dto.RecordCreateRequest) (dto.RecordResponse, error) {
	return s.response, s.err
}

func (s *stubRecordService) Update(context.Context, authz.Actor, string, string, dto.RecordUpdateRequest) (dto.RecordResponse, error) {
	return s.response, s.err
}

func (s *stubRecordService) SoftDelete(context.Context, authz.Actor, string, string) error {
	return s.err
}

func (s *stubRecordService) Restore(context.Context, authz.Actor, string, string) (dto.RecordResponse, error) {
	return s.response, s.err
}

func (s *stubRecordService) PermanentlyDelete(context.Context, authz.Actor, string, string) error {
	return s.err
}

func (s *stubRecordService) ListDeleted(context.Context, authz.Actor, string) (dto.DeletedRecordListResponse, error) {
	return dto.DeletedRecordListResponse{}, s.err
}

func newRecordTestApp(svc service.RecordService) *fiber.App {
	app := fiber.New()
	h := NewRecordHandler(svc, zerolog.New(io.Discard))
	h.Register(app.Group("/records"), nil)
	return app
}

func TestRecordHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unauthenticated", authz.ErrUnauthenticated, fiber.StatusUnauthorized},
		{"unauthorized", authz.ErrUnauthorized, fiber.StatusForbidden},
		{"no tenant", authz.ErrNoTenantSelected, fiber.StatusBadRequest},
		{"not found", service.ErrRecordNotFound, fiber.StatusNotFound},
		{"not deleted", service.ErrRecordNotDeleted, fiber.StatusConflict},
		{"purge conflict", service.ErrPurgeConflict, fiber.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newRecordTestApp(&stubRecordService{err: tc.err})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/records/abc", nil))
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestRecordHandlerRetentionDenialCarriesDaysRemaining(t *testing.T) {
	app := newRecordTestApp(&stubRecordService{err: &service.RetentionPeriodError{DaysRemaining: 42}})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/records/abc/permanent", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			DaysRemaining int `json:"days_remaining"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Success)
	require.Equal(t, 42, body.Data.DaysRemaining)
}

func TestRecordHandlerSuccessEnvelope(t *testing.T) {
	app := newRecordTestApp(&stubRecordService{response: dto.RecordResponse{ID: "r1", SubjectName: "Jordan Reyes"}})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/records/r1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Success)
	require.Equal(t, "r1", body.Data.ID)
}

func TestRecordHandlerRejectsBadPagination(t *testing.T) {
	app := newRecordTestApp(&stubRecordService{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/records/?page=banana", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
