package ingest

import (
	"strconv"
	"strings"
	"time"

	"frota/internal/fleet"
	"frota/internal/model"

	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order. Values without an offset are read as
// UTC wall clock; values with one keep it. Slash dates are day-first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseTimestamp normalizes the date formats found in the fleet exports.
// ok is false for empty or unrecognized values.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func timestampPtr(s string) *time.Time {
	t, ok := ParseTimestamp(s)
	if !ok {
		return nil
	}
	return &t
}

// ParseCost reads a monetary value. Both "1234.50" and "1234,50" are
// accepted; anything else is nil.
func ParseCost(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func parseLocation(lat, lng string) *fleet.Location {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return nil
	}
	return &fleet.Location{Latitude: la, Longitude: lo}
}

// Decode builds the typed snapshot of a stored dataset. The dataset must have
// its child tables preloaded. The point_records table is always present in a
// stored dataset, so Punches is never nil here.
func Decode(ds *model.Dataset) *fleet.Dataset {
	out := &fleet.Dataset{
		ID:           ds.ID,
		Name:         ds.Nome,
		ImportedAt:   ds.CreatedAt,
		Vehicles:     make([]fleet.Vehicle, 0, len(ds.Veiculos)),
		Uses:         make([]fleet.VehicleUse, 0, len(ds.Utilizacoes)),
		Maintenances: make([]fleet.Maintenance, 0, len(ds.Manutencoes)),
		Users:        make([]fleet.User, 0, len(ds.Usuarios)),
		Punches:      &fleet.PunchTable{Records: make([]fleet.PunchRecord, 0, len(ds.RegistrosPonto))},
	}

	for _, v := range ds.Veiculos {
		out.Vehicles = append(out.Vehicles, fleet.Vehicle{
			ID:        v.SourceID,
			CreatedAt: timestampPtr(v.CriadoEm),
			Photo:     v.Foto,
			Plate:     v.Placa,
			Brand:     v.Marca,
			Model:     v.Modelo,
			Status:    v.Status,
			Type:      v.Tipo,
		})
	}
	for _, u := range ds.Utilizacoes {
		out.Uses = append(out.Uses, fleet.VehicleUse{
			ID:        u.SourceID,
			CreatedAt: timestampPtr(u.CriadoEm),
			Start:     timestampPtr(u.DataInicio),
			End:       timestampPtr(u.DataFim),
			Driver:    u.Utilizador,
			Odometer:  u.Quilometragem,
			Purpose:   u.Finalidade,
			Status:    u.Status,
			VehicleID: u.VehicleID,
		})
	}
	for _, m := range ds.Manutencoes {
		out.Maintenances = append(out.Maintenances, fleet.Maintenance{
			ID:          m.SourceID,
			CreatedAt:   timestampPtr(m.CriadoEm),
			VehicleID:   m.VehicleID,
			Date:        timestampPtr(m.DataManutencao),
			Description: m.Descricao,
			Cost:        ParseCost(m.Custo),
			Status:      m.Status,
		})
	}
	for _, u := range ds.Usuarios {
		out.Users = append(out.Users, fleet.User{
			ID:        u.SourceID,
			CreatedAt: timestampPtr(u.CriadoEm),
			Name:      u.Nome,
			Email:     u.Email,
			Role:      u.Funcao,
			Access:    u.Acesso,
		})
	}
	for _, p := range ds.RegistrosPonto {
		out.Punches.Records = append(out.Punches.Records, fleet.PunchRecord{
			ID:        p.SourceID,
			Timestamp: timestampPtr(p.Data),
			Type:      p.Tipo,
			User:      p.Utilizador,
			Location:  parseLocation(p.Latitude, p.Longitude),
		})
	}
	return out
}

// Attach copies parsed tables into a dataset row before it is persisted.
func Attach(ds *model.Dataset, t *Tables) {
	ds.Veiculos = t.Veiculos
	ds.Utilizacoes = t.Utilizacoes
	ds.Manutencoes = t.Manutencoes
	ds.Usuarios = t.Usuarios
	ds.RegistrosPonto = t.RegistrosPonto
}
