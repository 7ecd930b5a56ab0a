package dto

import (
	"time"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// RecordListRequest defines filters for listing records.
type RecordListRequest struct {
	TenantID string
	CampusID string
	Status   string
	Search   string
	Page     int
	PageSize int
}

// RecordResponse serializes a trespass record, including the derived
// expired state.
type RecordResponse struct {
	ID                 string     `json:"id"`
	TenantID           string     `json:"tenant_id"`
	CampusID           *string    `json:"campus_id,omitempty"`
	SubjectName        string     `json:"subject_name"`
	Description        string     `json:"description"`
	IncidentDate       *time.Time `json:"incident_date,omitempty"`
	Status             string     `json:"status"`
	Expired            bool       `json:"expired"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	IsDAEP             bool       `json:"is_daep"`
	DAEPExpirationDate *time.Time `json:"daep_expiration_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewRecordResponse converts a record model into its response shape.
func NewRecordResponse(record models.Record, now time.Time) RecordResponse {
	return RecordResponse{
		ID:                 record.ID,
		TenantID:           record.TenantID,
		CampusID:           record.CampusID,
		SubjectName:        record.SubjectName,
		Description:        record.Description,
		IncidentDate:       record.IncidentDate,
		Status:             record.Status,
		Expired:            record.Expired(now),
		ExpirationDate:     record.ExpirationDate,
		IsDAEP:             record.IsDAEP,
		DAEPExpirationDate: record.DAEPExpirationDate,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
}

// RecordListResponse wraps a paginated record listing.
type RecordListResponse struct {
	Items      []RecordResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// RecordCreateRequest captures a new record payload.
type RecordCreateRequest struct {
	TenantID           string     `json:"tenant_id"`
	CampusID           *string    `json:"campus_id" validate:"omitempty,len=3"`
	SubjectName        string     `json:"subject_name" validate:"required,min=1,max=255"`
	Description        string     `json:"description" validate:"omitempty,max=10000"`
	IncidentDate       *time.Time `json:"incident_date"`
	Status             string     `json:"status" validate:"omitempty,oneof=active inactive"`
	ExpirationDate     *time.Time `json:"expiration_date"`
	IsDAEP             bool       `json:"is_daep"`
	DAEPExpirationDate *time.Time `json:"daep_expiration_date"`
}

// RecordUpdateRequest captures partial update payloads for records.
type RecordUpdateRequest struct {
	CampusID           *string    `json:"campus_id" validate:"omitempty,len=3"`
	SubjectName        *string    `json:"subject_name" validate:"omitempty,min=1,max=255"`
	Description        *string    `json:"description" validate:"omitempty,max=10000"`
	IncidentDate       *time.Time `json:"incident_date"`
	Status             *string    `json:"status" validate:"omitempty,oneof=active inactive"`
	ExpirationDate     *time.Time `json:"expiration_date"`
	IsDAEP             *bool      `json:"is_daep"`
	DAEPExpirationDate *time.Time `json:"daep_expiration_date"`
}

// DeletedRecordResponse serializes a soft-deleted record with its retention
// bookkeeping.
type DeletedRecordResponse struct {
	RecordResponse
	DeletedAt         time.Time `json:"deleted_at"`
	DaysSinceDeletion int       `json:"days_since_deletion"`
	RequiresAction    bool      `json:"requires_action"`
}

// NewDeletedRecordResponse converts a soft-deleted record model.
func NewDeletedRecordResponse(record models.Record, now time.Time) DeletedRecordResponse {
	response := DeletedRecordResponse{
		RecordResponse:    NewRecordResponse(record, now),
		DaysSinceDeletion: record.DaysSinceDeletion(now),
		RequiresAction:    record.RequiresAction(now),
	}
	if record.DeletedAt != nil {
		response.DeletedAt = *record.DeletedAt
	}
	return response
}

// DeletedRecordListResponse wraps the deleted-records view.
type DeletedRecordListResponse struct {
	Items               []DeletedRecordResponse `json:"items"`
	Total               int64                   `json:"total"`
	RequiresActionCount int64                   `json:"requires_action_count"`
	GeneratedAt         time.Time               `json:"generated_at"`
}
