package model

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is one import of the five fleet CSVs.
// Origem: "upload" | "exemplo"
// Rows are stored as the text the CSV carried; parsing happens when a snapshot
// is loaded, so a timestamp keeps its original offset and an unparseable value
// is still there to be counted.
type Dataset struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome         string     `gorm:"not null"`
	Origem       string     `gorm:"type:varchar(20);not null;default:'upload'"`
	ImportadoPor *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time

	Veiculos       []Veiculo       `gorm:"foreignKey:DatasetID"`
	Utilizacoes    []Utilizacao    `gorm:"foreignKey:DatasetID"`
	Manutencoes    []Manutencao    `gorm:"foreignKey:DatasetID"`
	Usuarios       []UsuarioFrota  `gorm:"foreignKey:DatasetID"`
	RegistrosPonto []RegistroPonto `gorm:"foreignKey:DatasetID"`
}

// Veiculo mirrors vehicles_rows.csv.
type Veiculo struct {
	RowID     uint      `gorm:"primaryKey;autoIncrement"`
	DatasetID uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceID  string    `gorm:"not null"`
	CriadoEm  string
	Foto      string
	Placa     string
	Marca     string
	Modelo    string
	Status    string
	Tipo      string
}

func (Veiculo) TableName() string { return "veiculos" }

// Utilizacao mirrors vehicle_uses_rows.csv.
type Utilizacao struct {
	RowID         uint      `gorm:"primaryKey;autoIncrement"`
	DatasetID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceID      string    `gorm:"not null"`
	CriadoEm      string
	DataInicio    string
	DataFim       string
	Utilizador    string
	Quilometragem string
	Finalidade    string
	Status        string
	VehicleID     string `gorm:"index"`
}

func (Utilizacao) TableName() string { return "utilizacoes" }

// Manutencao mirrors maintenances_rows.csv. Custo stays text: an empty or
// malformed cost is not the same as zero.
type Manutencao struct {
	RowID          uint      `gorm:"primaryKey;autoIncrement"`
	DatasetID      uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceID       string    `gorm:"not null"`
	CriadoEm       string
	VehicleID      string `gorm:"index"`
	DataManutencao string
	Descricao      string
	Custo          string
	Status         string
}

func (Manutencao) TableName() string { return "manutencoes" }

// UsuarioFrota mirrors users_rows.csv (fleet staff, not API operators).
type UsuarioFrota struct {
	RowID     uint      `gorm:"primaryKey;autoIncrement"`
	DatasetID uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceID  string    `gorm:"not null"`
	CriadoEm  string
	Nome      string
	Email     string
	Funcao    string
	Acesso    string
}

func (UsuarioFrota) TableName() string { return "usuarios_frota" }

// RegistroPonto mirrors point_records_rows.csv.
// Tipo: "ENTRADA" | "SAÍDA" (other values are kept verbatim)
type RegistroPonto struct {
	RowID      uint      `gorm:"primaryKey;autoIncrement"`
	DatasetID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceID   string    `gorm:"not null"`
	CriadoEm   string
	Tipo       string `gorm:"type:varchar(20)"`
	Utilizador string `gorm:"index"`
	Data       string
	Latitude   string
	Longitude  string
}

func (RegistroPonto) TableName() string { return "registros_ponto" }
