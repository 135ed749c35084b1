// Package ingest reads the five fleet CSV exports into storage rows and turns
// stored rows back into the typed fleet.Dataset that reports consume.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"frota/internal/model"
)

// Form field / file names of the five datasets, in upload order.
const (
	FileVehicles     = "vehicles"
	FileVehicleUses  = "vehicle_uses"
	FileMaintenances = "maintenances"
	FileUsers        = "users"
	FilePointRecords = "point_records"
)

// Files are the CSV sources of one import. A nil reader means the file was
// not provided.
type Files struct {
	Vehicles     io.Reader
	VehicleUses  io.Reader
	Maintenances io.Reader
	Users        io.Reader
	PointRecords io.Reader
}

// MissingFilesError lists every file absent from an import.
type MissingFilesError struct {
	Names []string
}

func (e *MissingFilesError) Error() string {
	return "arquivos faltantes: " + strings.Join(e.Names, ", ")
}

// Tables holds the raw rows of one import, ready to be persisted.
type Tables struct {
	Veiculos       []model.Veiculo
	Utilizacoes    []model.Utilizacao
	Manutencoes    []model.Manutencao
	Usuarios       []model.UsuarioFrota
	RegistrosPonto []model.RegistroPonto
}

// Read parses all five files. It fails with *MissingFilesError before
// reading anything if one or more files are absent.
func Read(f Files) (*Tables, error) {
	var missing []string
	for _, s := range []struct {
		name string
		r    io.Reader
	}{
		{FileVehicles, f.Vehicles},
		{FileVehicleUses, f.VehicleUses},
		{FileMaintenances, f.Maintenances},
		{FileUsers, f.Users},
		{FilePointRecords, f.PointRecords},
	} {
		if s.r == nil {
			missing = append(missing, s.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFilesError{Names: missing}
	}

	var (
		t   Tables
		err error
	)
	if t.Veiculos, err = mapRows(f.Vehicles, veiculoRow); err != nil {
		return nil, fmt.Errorf("%s: %w", FileVehicles, err)
	}
	if t.Utilizacoes, err = mapRows(f.VehicleUses, utilizacaoRow); err != nil {
		return nil, fmt.Errorf("%s: %w", FileVehicleUses, err)
	}
	if t.Manutencoes, err = mapRows(f.Maintenances, manutencaoRow); err != nil {
		return nil, fmt.Errorf("%s: %w", FileMaintenances, err)
	}
	if t.Usuarios, err = mapRows(f.Users, usuarioRow); err != nil {
		return nil, fmt.Errorf("%s: %w", FileUsers, err)
	}
	if t.RegistrosPonto, err = mapRows(f.PointRecords, pontoRow); err != nil {
		return nil, fmt.Errorf("%s: %w", FilePointRecords, err)
	}
	return &t, nil
}

func veiculoRow(t *table, row []string) model.Veiculo {
	return model.Veiculo{
		SourceID: t.get(row, "id"),
		CriadoEm: t.get(row, "created_at"),
		Foto:     t.get(row, "foto"),
		Placa:    t.get(row, "placa"),
		Marca:    t.get(row, "marca"),
		Modelo:   t.get(row, "modelo"),
		Status:   t.get(row, "status"),
		Tipo:     t.get(row, "tipo"),
	}
}

func utilizacaoRow(t *table, row []string) model.Utilizacao {
	return model.Utilizacao{
		SourceID:      t.get(row, "id"),
		CriadoEm:      t.get(row, "created_at"),
		DataInicio:    t.get(row, "data_inicio"),
		DataFim:       t.get(row, "data_fim"),
		Utilizador:    t.get(row, "utilizador"),
		Quilometragem: t.get(row, "quilometragem"),
		Finalidade:    t.get(row, "finalidade"),
		Status:        t.get(row, "status"),
		VehicleID:     t.get(row, "vehicle_id"),
	}
}

func manutencaoRow(t *table, row []string) model.Manutencao {
	return model.Manutencao{
		SourceID:       t.get(row, "id"),
		CriadoEm:       t.get(row, "created_at"),
		VehicleID:      t.get(row, "vehicle_id"),
		DataManutencao: t.get(row, "data_manutencao"),
		Descricao:      t.get(row, "descricao"),
		Custo:          t.get(row, "custo"),
		Status:         t.get(row, "status"),
	}
}

func usuarioRow(t *table, row []string) model.UsuarioFrota {
	return model.UsuarioFrota{
		SourceID: t.get(row, "id"),
		CriadoEm: t.get(row, "created_at"),
		Nome:     t.get(row, "nome"),
		Email:    t.get(row, "email"),
		Funcao:   t.get(row, "funcao"),
		Acesso:   t.get(row, "acesso"),
	}
}

func pontoRow(t *table, row []string) model.RegistroPonto {
	return model.RegistroPonto{
		SourceID:   t.get(row, "id"),
		CriadoEm:   t.get(row, "created_at"),
		Tipo:       t.get(row, "tipo"),
		Utilizador: t.get(row, "utilizador"),
		Data:       t.get(row, "data"),
		Latitude:   t.get(row, "latitude"),
		Longitude:  t.get(row, "longitude"),
	}
}
