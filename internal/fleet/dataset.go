package fleet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle status values used by the fleet app.
const (
	StatusDisponivel = "DISPONÍVEL"
	StatusEmUso      = "EM USO"
)

type Vehicle struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"created_at"`
	Photo     string     `json:"foto"`
	Plate     string     `json:"placa"`
	Brand     string     `json:"marca"`
	Model     string     `json:"modelo"`
	Status    string     `json:"status"`
	Type      string     `json:"tipo"`
}

// VehicleUse is one trip / checkout of a vehicle by a driver.
type VehicleUse struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"created_at"`
	Start     *time.Time `json:"data_inicio"`
	End       *time.Time `json:"data_fim"`
	Driver    string     `json:"utilizador"`
	Odometer  string     `json:"quilometragem"`
	Purpose   string     `json:"finalidade"`
	Status    string     `json:"status"`
	VehicleID string     `json:"vehicle_id"`
}

// Duration returns End - Start when both ends parsed. The result may be
// negative for inconsistent rows; callers decide whether to keep it.
func (u VehicleUse) Duration() (time.Duration, bool) {
	if u.Start == nil || u.End == nil {
		return 0, false
	}
	return u.End.Sub(*u.Start), true
}

type Maintenance struct {
	ID          string           `json:"id"`
	CreatedAt   *time.Time       `json:"created_at"`
	VehicleID   string           `json:"vehicle_id"`
	Date        *time.Time       `json:"data_manutencao"`
	Description string           `json:"descricao"`
	Cost        *decimal.Decimal `json:"custo"`
	Status      string           `json:"status"`
}

// User is a row of the fleet users table. Punches reference users by free
// text (usually the e-mail) and are never validated against this table.
type User struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"created_at"`
	Name      string     `json:"nome"`
	Email     string     `json:"email"`
	Role      string     `json:"funcao"`
	Access    string     `json:"acesso"`
}

// Dataset is the request-scoped snapshot every report reads from. Each report
// call receives its own Dataset; nothing here is shared between requests.
type Dataset struct {
	ID           uuid.UUID
	Name         string
	ImportedAt   time.Time
	Vehicles     []Vehicle
	Uses         []VehicleUse
	Maintenances []Maintenance
	Users        []User
	Punches      *PunchTable
}

// VehicleByID indexes vehicles by their source id.
func (d *Dataset) VehicleByID() map[string]Vehicle {
	out := make(map[string]Vehicle, len(d.Vehicles))
	for _, v := range d.Vehicles {
		if _, dup := out[v.ID]; !dup {
			out[v.ID] = v
		}
	}
	return out
}
