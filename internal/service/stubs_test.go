package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"frota/internal/config"
	"frota/internal/dto"
	"frota/internal/events"
	"frota/internal/ingest"
	"frota/internal/model"
	"frota/internal/repository"

	"github.com/google/uuid"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────

type stubOperadorRepo struct {
	ops map[string]*model.Operador
}

var _ repository.OperadorRepository = (*stubOperadorRepo)(nil)

func newStubOperadorRepo() *stubOperadorRepo {
	return &stubOperadorRepo{ops: make(map[string]*model.Operador)}
}

func (r *stubOperadorRepo) FindByUsername(_ context.Context, login string) (*model.Operador, error) {
	for _, o := range r.ops {
		byEmail := o.Email != nil && strings.EqualFold(*o.Email, login)
		if (o.Username == login || byEmail) && o.Ativo {
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubOperadorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Operador, error) {
	for _, o := range r.ops {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubOperadorRepo) List(_ context.Context) ([]model.Operador, error) {
	out := make([]model.Operador, 0, len(r.ops))
	for _, o := range r.ops {
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubOperadorRepo) Upsert(_ context.Context, o *model.Operador) error {
	if existing, ok := r.ops[o.Username]; ok {
		o.ID = existing.ID
	} else {
		o.ID = uuid.New()
	}
	r.ops[o.Username] = o
	return nil
}

type stubDatasetRepo struct {
	datasets map[uuid.UUID]*model.Dataset
	order    []uuid.UUID
	failWith error
}

var _ repository.DatasetRepository = (*stubDatasetRepo)(nil)

func newStubDatasetRepo() *stubDatasetRepo {
	return &stubDatasetRepo{datasets: make(map[uuid.UUID]*model.Dataset)}
}

func (r *stubDatasetRepo) Create(_ context.Context, ds *model.Dataset) error {
	if r.failWith != nil {
		return r.failWith
	}
	ds.ID = uuid.New()
	ds.CreatedAt = time.Date(2025, 9, 30, 10, 0, 0, 0, time.UTC)
	r.datasets[ds.ID] = ds
	r.order = append(r.order, ds.ID)
	return nil
}

func (r *stubDatasetRepo) FindWithRows(_ context.Context, id uuid.UUID) (*model.Dataset, error) {
	ds, ok := r.datasets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ds, nil
}

func (r *stubDatasetRepo) List(_ context.Context) ([]repository.DatasetSummary, error) {
	out := []repository.DatasetSummary{}
	for _, id := range r.order {
		ds, ok := r.datasets[id]
		if !ok {
			continue
		}
		out = append(out, repository.DatasetSummary{
			ID: ds.ID, Nome: ds.Nome, Origem: ds.Origem, CreatedAt: ds.CreatedAt,
			Veiculos:       int64(len(ds.Veiculos)),
			Utilizacoes:    int64(len(ds.Utilizacoes)),
			Manutencoes:    int64(len(ds.Manutencoes)),
			Usuarios:       int64(len(ds.Usuarios)),
			RegistrosPonto: int64(len(ds.RegistrosPonto)),
		})
	}
	return out, nil
}

func (r *stubDatasetRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.datasets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.datasets, id)
	return nil
}

// ── Publisher / queue stubs ───────────────────────────────────────────────────

type stubPublisher struct {
	mu     sync.Mutex
	events []events.DatasetImported
	err    error
}

func (p *stubPublisher) PublishDatasetImported(_ context.Context, evt events.DatasetImported) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

type stubQueue struct {
	jobs []dto.HoursEmailJob
}

func (q *stubQueue) EnqueueHoursEmail(_ context.Context, job dto.HoursEmailJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

var errBroker = errors.New("broker unreachable")

// ── Fixtures ──────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

const (
	vehiclesCSV = "id,placa,marca,modelo,status,tipo\n" +
		"v1,ABC1D23,Fiat,Strada,DISPONÍVEL,Utilitário\n"
	usesCSV = "id,data_inicio,data_fim,utilizador,vehicle_id\n" +
		"u1,2025-09-01 08:00:00,2025-09-01 10:00:00,ana@frota.com,v1\n"
	maintenancesCSV = "id,vehicle_id,data_manutencao,descricao,custo\n" +
		"m1,v1,2025-08-10,Troca de óleo,\"350,00\"\n"
	usersCSV = "id,nome,email\n" +
		"f1,Ana,ana@frota.com\n"
	punchesCSV = "id,created_at,tipo,utilizador,data,latitude,longitude\n" +
		"p1,,ENTRADA,ana@frota.com,2025-09-01 08:00:00,,\n" +
		"p2,,SAÍDA,ana@frota.com,2025-09-01 12:30:00,,\n" +
		"p3,,ENTRADA,bruno@frota.com,2025-09-01 09:00:00,,\n" +
		"p4,,SAÍDA,bruno@frota.com,2025-09-01 10:00:00,,\n" +
		"p5,,ENTRADA,bruno@frota.com,ontem,,\n"
)

func fleetFiles() ingest.Files {
	return ingest.Files{
		Vehicles:     strings.NewReader(vehiclesCSV),
		VehicleUses:  strings.NewReader(usesCSV),
		Maintenances: strings.NewReader(maintenancesCSV),
		Users:        strings.NewReader(usersCSV),
		PointRecords: strings.NewReader(punchesCSV),
	}
}
