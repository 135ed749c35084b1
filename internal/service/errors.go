package service

import (
	"errors"

	"frota/internal/hours"
)

var (
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrInvalidToken       = errors.New("refresh token inválido ou expirado")
	ErrOperadorInativo    = errors.New("operador não encontrado ou inativo")

	ErrInvalidCSV      = errors.New("erro ao processar arquivos")
	ErrDatasetNotFound = errors.New("dataset não encontrado")
	ErrVehicleNotFound = errors.New("nenhuma manutenção encontrada para o veículo")
	ErrUserNotFound    = errors.New("nenhum registro de ponto para o usuário")
	ErrMailDisabled    = errors.New("envio de e-mail não configurado")
)

// HoursUnavailableError means worked hours could not be computed for the
// dataset. It is not a report of zero hours.
type HoursUnavailableError struct {
	Reason hours.Reason
}

func (e *HoursUnavailableError) Error() string {
	switch e.Reason {
	case hours.ReasonMissingInput:
		return "dados de ponto não disponíveis"
	case hours.ReasonNoUsableRecords:
		return "nenhum registro de ponto com data válida"
	default:
		return "não foi possível calcular horas trabalhadas: nenhum par entrada/saída encontrado"
	}
}
