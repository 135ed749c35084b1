package dto

import "time"

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TableCounts struct {
	Veiculos       int64 `json:"vehicles"`
	Utilizacoes    int64 `json:"vehicle_uses"`
	Manutencoes    int64 `json:"maintenances"`
	Usuarios       int64 `json:"users"`
	RegistrosPonto int64 `json:"point_records"`
}

type DatasetResponse struct {
	ID        string      `json:"id"`
	Nome      string      `json:"nome"`
	Origem    string      `json:"origem"` // upload | exemplo
	CreatedAt time.Time   `json:"created_at"`
	Linhas    TableCounts `json:"linhas"`
}

// ImportResponse is returned by both upload and sample import.
type ImportResponse struct {
	DatasetResponse
	// PontosSemData counts punches whose timestamp could not be read.
	PontosSemData int `json:"pontos_sem_data"`
}
