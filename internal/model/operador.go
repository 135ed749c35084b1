package model

import (
	"time"

	"github.com/google/uuid"
)

// Operador is an account allowed to use the reporting API.
// Rol: "master" | "user" (same access levels as the fleet app's "acesso" column)
type Operador struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nome         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Ativo        bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Operador) TableName() string { return "operadores" }
