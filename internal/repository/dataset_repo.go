package repository

import (
	"context"
	"errors"
	"time"

	"frota/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatasetSummary is a dataset row with the size of each of its tables.
type DatasetSummary struct {
	ID             uuid.UUID
	Nome           string
	Origem         string
	ImportadoPor   *uuid.UUID
	CreatedAt      time.Time
	Veiculos       int64
	Utilizacoes    int64
	Manutencoes    int64
	Usuarios       int64
	RegistrosPonto int64
}

type DatasetRepository interface {
	// Create stores the dataset and all of its rows in one transaction.
	Create(ctx context.Context, ds *model.Dataset) error
	// FindWithRows loads the dataset with every child table preloaded.
	FindWithRows(ctx context.Context, id uuid.UUID) (*model.Dataset, error)
	List(ctx context.Context) ([]DatasetSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type datasetRepo struct{ db *gorm.DB }

func NewDatasetRepository(db *gorm.DB) DatasetRepository { return &datasetRepo{db: db} }

const insertBatch = 500

func (r *datasetRepo) Create(ctx context.Context, ds *model.Dataset) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(ds).Error; err != nil {
			return err
		}
		for i := range ds.Veiculos {
			ds.Veiculos[i].DatasetID = ds.ID
		}
		for i := range ds.Utilizacoes {
			ds.Utilizacoes[i].DatasetID = ds.ID
		}
		for i := range ds.Manutencoes {
			ds.Manutencoes[i].DatasetID = ds.ID
		}
		for i := range ds.Usuarios {
			ds.Usuarios[i].DatasetID = ds.ID
		}
		for i := range ds.RegistrosPonto {
			ds.RegistrosPonto[i].DatasetID = ds.ID
		}

		// Postgres caps bind parameters per statement.
		if err := createBatch(tx, ds.Veiculos); err != nil {
			return err
		}
		if err := createBatch(tx, ds.Utilizacoes); err != nil {
			return err
		}
		if err := createBatch(tx, ds.Manutencoes); err != nil {
			return err
		}
		if err := createBatch(tx, ds.Usuarios); err != nil {
			return err
		}
		return createBatch(tx, ds.RegistrosPonto)
	})
}

func createBatch[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, insertBatch).Error
}

func (r *datasetRepo) FindWithRows(ctx context.Context, id uuid.UUID) (*model.Dataset, error) {
	var ds model.Dataset
	err := r.db.WithContext(ctx).
		Preload("Veiculos", orderByRow).
		Preload("Utilizacoes", orderByRow).
		Preload("Manutencoes", orderByRow).
		Preload("Usuarios", orderByRow).
		Preload("RegistrosPonto", orderByRow).
		First(&ds, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &ds, err
}

// orderByRow keeps CSV order, which first-occurrence rules depend on.
func orderByRow(db *gorm.DB) *gorm.DB { return db.Order("row_id ASC") }

func (r *datasetRepo) List(ctx context.Context) ([]DatasetSummary, error) {
	var list []DatasetSummary
	err := r.db.WithContext(ctx).
		Model(&model.Dataset{}).
		Select(`datasets.id, datasets.nome, datasets.origem, datasets.importado_por, datasets.created_at,
			(SELECT COUNT(*) FROM veiculos v WHERE v.dataset_id = datasets.id) AS veiculos,
			(SELECT COUNT(*) FROM utilizacoes u WHERE u.dataset_id = datasets.id) AS utilizacoes,
			(SELECT COUNT(*) FROM manutencoes m WHERE m.dataset_id = datasets.id) AS manutencoes,
			(SELECT COUNT(*) FROM usuarios_frota f WHERE f.dataset_id = datasets.id) AS usuarios,
			(SELECT COUNT(*) FROM registros_ponto p WHERE p.dataset_id = datasets.id) AS registros_ponto`).
		Order("datasets.created_at DESC").
		Scan(&list).Error
	return list, err
}

func (r *datasetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&model.Veiculo{}, &model.Utilizacao{}, &model.Manutencao{},
			&model.UsuarioFrota{}, &model.RegistroPonto{},
		} {
			if err := tx.Where("dataset_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&model.Dataset{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
