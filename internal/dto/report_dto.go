package dto

// ─── Query DTOs ──────────────────────────────────────────────────────────────

type VehiclesQuery struct {
	Status []string `form:"status"`
	Tipo   []string `form:"tipo"`
}

type TopQuery struct {
	Top int `form:"top" validate:"omitempty,min=1,max=100"`
}

// HoursQuery filters the worked-hours report. user may be repeated.
type HoursQuery struct {
	PeriodType string   `form:"period_type" validate:"omitempty,oneof=DAY MONTH ALL"`
	User       []string `form:"user"        validate:"dive,min=1"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type EmailHoursRequest struct {
	To         string   `json:"to"          validate:"required,email"`
	PeriodType string   `json:"period_type" validate:"omitempty,oneof=DAY MONTH ALL"`
	Users      []string `json:"users"       validate:"dive,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type JobAcceptedResponse struct {
	Status string `json:"status"` // queued
	To     string `json:"to"`
}

// ─── Job payloads ────────────────────────────────────────────────────────────

// HoursEmailJob is queued by POST /hours/email and consumed by the report
// e-mail worker.
type HoursEmailJob struct {
	DatasetID  string   `json:"dataset_id"`
	To         string   `json:"to"`
	PeriodType string   `json:"period_type"`
	Users      []string `json:"users,omitempty"`
}
