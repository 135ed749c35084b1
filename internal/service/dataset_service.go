package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frota/internal/dto"
	"frota/internal/events"
	"frota/internal/fleet"
	"frota/internal/ingest"
	"frota/internal/model"
	"frota/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	OrigemUpload  = "upload"
	OrigemExemplo = "exemplo"
)

type DatasetService interface {
	// Import reads the five CSVs and stores them as a new dataset. A missing
	// file fails with *ingest.MissingFilesError naming all of them.
	Import(ctx context.Context, nome string, files ingest.Files, por *uuid.UUID) (*dto.ImportResponse, error)
	// ImportSample stores the built-in example dataset.
	ImportSample(ctx context.Context, por *uuid.UUID) (*dto.ImportResponse, error)
	List(ctx context.Context) ([]dto.DatasetResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Snapshot loads a dataset into a fresh in-memory fleet.Dataset. Every
	// call returns its own copy.
	Snapshot(ctx context.Context, id uuid.UUID) (*fleet.Dataset, error)
}

type datasetService struct {
	repo      repository.DatasetRepository
	publisher events.Publisher
	now       func() time.Time
}

func NewDatasetService(repo repository.DatasetRepository, publisher events.Publisher) DatasetService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &datasetService{repo: repo, publisher: publisher, now: time.Now}
}

// ── Import ────────────────────────────────────────────────────────────────────

func (s *datasetService) Import(ctx context.Context, nome string, files ingest.Files, por *uuid.UUID) (*dto.ImportResponse, error) {
	tables, err := ingest.Read(files)
	if err != nil {
		var missing *ingest.MissingFilesError
		if errors.As(err, &missing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if nome == "" {
		nome = "Importação " + s.now().Format("02/01/2006 15:04")
	}
	return s.store(ctx, nome, OrigemUpload, tables, por)
}

func (s *datasetService) ImportSample(ctx context.Context, por *uuid.UUID) (*dto.ImportResponse, error) {
	files, err := ingest.SampleFiles()
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar dados de exemplo: %w", err)
	}
	tables, err := ingest.Read(files)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar dados de exemplo: %w", err)
	}
	return s.store(ctx, "Dados de exemplo", OrigemExemplo, tables, por)
}

func (s *datasetService) store(ctx context.Context, nome, origem string, tables *ingest.Tables, por *uuid.UUID) (*dto.ImportResponse, error) {
	ds := &model.Dataset{Nome: nome, Origem: origem, ImportadoPor: por}
	ingest.Attach(ds, tables)
	if err := s.repo.Create(ctx, ds); err != nil {
		return nil, err
	}

	snap := ingest.Decode(ds)
	semData := 0
	for _, p := range snap.Punches.Records {
		if !p.HasTimestamp() {
			semData++
		}
	}

	resp := &dto.ImportResponse{
		DatasetResponse: dto.DatasetResponse{
			ID:        ds.ID.String(),
			Nome:      ds.Nome,
			Origem:    ds.Origem,
			CreatedAt: ds.CreatedAt,
			Linhas: dto.TableCounts{
				Veiculos:       int64(len(ds.Veiculos)),
				Utilizacoes:    int64(len(ds.Utilizacoes)),
				Manutencoes:    int64(len(ds.Manutencoes)),
				Usuarios:       int64(len(ds.Usuarios)),
				RegistrosPonto: int64(len(ds.RegistrosPonto)),
			},
		},
		PontosSemData: semData,
	}

	log.Info().
		Str("dataset_id", resp.ID).
		Str("origem", origem).
		Int("veiculos", len(ds.Veiculos)).
		Int("registros_ponto", len(ds.RegistrosPonto)).
		Int("pontos_sem_data", semData).
		Msg("dataset imported")

	s.publishImported(ctx, ds, semData)
	return resp, nil
}

func (s *datasetService) publishImported(ctx context.Context, ds *model.Dataset, semData int) {
	evt := events.DatasetImported{
		DatasetID:     ds.ID.String(),
		Nome:          ds.Nome,
		Origem:        ds.Origem,
		Veiculos:      len(ds.Veiculos),
		Utilizacoes:   len(ds.Utilizacoes),
		Manutencoes:   len(ds.Manutencoes),
		Usuarios:      len(ds.Usuarios),
		Pontos:        len(ds.RegistrosPonto),
		PontosSemData: semData,
		ImportedAt:    ds.CreatedAt,
	}
	if ds.ImportadoPor != nil {
		evt.ImportadoPor = ds.ImportadoPor.String()
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishDatasetImported(pubCtx, evt); err != nil {
		log.Warn().Err(err).Str("dataset_id", evt.DatasetID).Msg("dataset.imported not published")
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *datasetService) List(ctx context.Context) ([]dto.DatasetResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DatasetResponse, len(list))
	for i, d := range list {
		resp[i] = dto.DatasetResponse{
			ID:        d.ID.String(),
			Nome:      d.Nome,
			Origem:    d.Origem,
			CreatedAt: d.CreatedAt,
			Linhas: dto.TableCounts{
				Veiculos:       d.Veiculos,
				Utilizacoes:    d.Utilizacoes,
				Manutencoes:    d.Manutencoes,
				Usuarios:       d.Usuarios,
				RegistrosPonto: d.RegistrosPonto,
			},
		}
	}
	return resp, nil
}

func (s *datasetService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDatasetNotFound
		}
		return err
	}
	log.Info().Str("dataset_id", id.String()).Msg("dataset deleted")
	return nil
}

func (s *datasetService) Snapshot(ctx context.Context, id uuid.UUID) (*fleet.Dataset, error) {
	ds, err := s.repo.FindWithRows(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDatasetNotFound
		}
		return nil, err
	}
	return ingest.Decode(ds), nil
}
