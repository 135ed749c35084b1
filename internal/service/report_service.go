package service

import (
	"context"
	"time"

	"frota/internal/dto"
	"frota/internal/fleet"
	"frota/internal/hours"
	"frota/internal/infra"
	"frota/internal/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultTop = 10

// JobQueue accepts report e-mail jobs. Implemented by worker.Dispatcher.
type JobQueue interface {
	EnqueueHoursEmail(ctx context.Context, job dto.HoursEmailJob) error
}

// ReportService answers every report over a dataset snapshot. Each call loads
// its own snapshot and recomputes worked hours from it; nothing is cached.
type ReportService interface {
	Overview(ctx context.Context, id uuid.UUID) (*report.Overview, error)
	Vehicles(ctx context.Context, id uuid.UUID, f report.VehicleFilter) (*report.VehicleReport, error)
	Usage(ctx context.Context, id uuid.UUID, top int) (*report.UsageReport, error)
	Maintenance(ctx context.Context, id uuid.UUID, top int) (*report.MaintenanceReport, error)
	MaintainedVehicles(ctx context.Context, id uuid.UUID) ([]report.Count, error)
	VehicleMaintenance(ctx context.Context, id uuid.UUID, vehicleID string) (*report.VehicleMaintenance, error)
	Punches(ctx context.Context, id uuid.UUID, top int) (*report.PunchReport, error)
	UserPunches(ctx context.Context, id uuid.UUID, user string) (*report.UserPunches, error)
	// Hours fails with *HoursUnavailableError when the engine result is
	// unavailable.
	Hours(ctx context.Context, id uuid.UUID, f report.HoursFilter) (*report.HoursReport, error)
	HoursDocument(ctx context.Context, id uuid.UUID, f report.HoursFilter) (*infra.HoursDocument, error)
	// EmailHours checks the report can be built and queues it for delivery.
	EmailHours(ctx context.Context, id uuid.UUID, req dto.EmailHoursRequest) error
}

type reportService struct {
	datasets DatasetService
	queue    JobQueue
	now      func() time.Time
}

// NewReportService wires the report service. queue may be nil, in which case
// EmailHours fails with ErrMailDisabled.
func NewReportService(datasets DatasetService, queue JobQueue) ReportService {
	return &reportService{datasets: datasets, queue: queue, now: time.Now}
}

func orDefault(top int) int {
	if top <= 0 {
		return defaultTop
	}
	return top
}

func (s *reportService) Overview(ctx context.Context, id uuid.UUID) (*report.Overview, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	r := report.BuildOverview(ds)
	return &r, nil
}

func (s *reportService) Vehicles(ctx context.Context, id uuid.UUID, f report.VehicleFilter) (*report.VehicleReport, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	r := report.BuildVehicles(ds, f)
	return &r, nil
}

func (s *reportService) Usage(ctx context.Context, id uuid.UUID, top int) (*report.UsageReport, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	r := report.BuildUsage(ds, orDefault(top))
	return &r, nil
}

// ── Manutenções ───────────────────────────────────────────────────────────────

func (s *reportService) Maintenance(ctx context.Context, id uuid.UUID, top int) (*report.MaintenanceReport, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	r := report.BuildMaintenance(ds, orDefault(top))
	return &r, nil
}

func (s *reportService) MaintainedVehicles(ctx context.Context, id uuid.UUID) ([]report.Count, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return report.VehiclesWithMaintenance(ds), nil
}

func (s *reportService) VehicleMaintenance(ctx context.Context, id uuid.UUID, vehicleID string) (*report.VehicleMaintenance, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	r, ok := report.BuildVehicleMaintenance(ds, vehicleID)
	if !ok {
		return nil, ErrVehicleNotFound
	}
	return &r, nil
}

// ── Ponto ─────────────────────────────────────────────────────────────────────

func (s *reportService) Punches(ctx context.Context, id uuid.UUID, top int) (*report.PunchReport, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	r := report.BuildPunches(ds, orDefault(top))
	return &r, nil
}

func (s *reportService) UserPunches(ctx context.Context, id uuid.UUID, user string) (*report.UserPunches, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	r, ok := report.BuildUserPunches(ds, user, computeHours(ds), s.now())
	if !ok {
		return nil, ErrUserNotFound
	}
	return &r, nil
}

// ── Horas trabalhadas ─────────────────────────────────────────────────────────

func (s *reportService) Hours(ctx context.Context, id uuid.UUID, f report.HoursFilter) (*report.HoursReport, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	res := computeHours(ds)
	if !res.Available() {
		return nil, &HoursUnavailableError{Reason: res.Reason}
	}
	r := report.BuildHours(res, f)
	return &r, nil
}

func (s *reportService) HoursDocument(ctx context.Context, id uuid.UUID, f report.HoursFilter) (*infra.HoursDocument, error) {
	ds, err := s.datasets.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	res := computeHours(ds)
	if !res.Available() {
		return nil, &HoursUnavailableError{Reason: res.Reason}
	}
	return &infra.HoursDocument{
		DatasetName: ds.Name,
		GeneratedAt: s.now(),
		Report:      report.BuildHours(res, f),
	}, nil
}

func (s *reportService) EmailHours(ctx context.Context, id uuid.UUID, req dto.EmailHoursRequest) error {
	if s.queue == nil {
		return ErrMailDisabled
	}
	f := report.HoursFilter{PeriodType: req.PeriodType, Users: req.Users}
	if _, err := s.Hours(ctx, id, f); err != nil {
		return err
	}
	return s.queue.EnqueueHoursEmail(ctx, dto.HoursEmailJob{
		DatasetID:  id.String(),
		To:         req.To,
		PeriodType: req.PeriodType,
		Users:      req.Users,
	})
}

func computeHours(ds *fleet.Dataset) hours.Result {
	res := hours.Compute(ds.Punches)
	if res.Skipped > 0 || !res.Available() {
		log.Debug().
			Str("dataset_id", ds.ID.String()).
			Int("skipped", res.Skipped).
			Str("reason", string(res.Reason)).
			Msg("worked hours computed")
	}
	return res
}
