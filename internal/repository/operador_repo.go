package repository

import (
	"context"
	"errors"

	"frota/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OperadorRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Operador, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Operador, error)
	List(ctx context.Context) ([]model.Operador, error)
	// Upsert creates the operator or, when the username exists, replaces its
	// name, e-mail, password hash, role and active flag.
	Upsert(ctx context.Context, o *model.Operador) error
}

type operadorRepo struct{ db *gorm.DB }

func NewOperadorRepository(db *gorm.DB) OperadorRepository { return &operadorRepo{db: db} }

func (r *operadorRepo) FindByUsername(ctx context.Context, username string) (*model.Operador, error) {
	var o model.Operador
	// Login by username or e-mail (case-insensitive e-mail match)
	err := r.db.WithContext(ctx).
		Where("(username = ? OR LOWER(email) = LOWER(?)) AND ativo = true", username, username).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *operadorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Operador, error) {
	var o model.Operador
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *operadorRepo) List(ctx context.Context) ([]model.Operador, error) {
	var ops []model.Operador
	err := r.db.WithContext(ctx).Order("username ASC").Find(&ops).Error
	return ops, err
}

func (r *operadorRepo) Upsert(ctx context.Context, o *model.Operador) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"nome", "email", "password_hash", "rol", "ativo", "updated_at"}),
	}).Create(o).Error
}
