package report

import (
	"frota/internal/fleet"

	"github.com/shopspring/decimal"
)

type Overview struct {
	DatasetName       string          `json:"dataset"`
	Vehicles          int             `json:"vehicles"`
	Uses              int             `json:"uses"`
	Maintenances      int             `json:"maintenances"`
	Users             int             `json:"users"`
	Punches           int             `json:"punches"`
	TotalCost         decimal.Decimal `json:"total_maintenance_cost"`
	VehicleStatus     []Count         `json:"vehicle_status"`
	VehicleTypes      []Count         `json:"vehicle_types"`
	TopVehiclesByUse  []Count         `json:"top_vehicles_by_use"`
	TopVehiclesByCost []Amount        `json:"top_vehicles_by_cost"`
}

const overviewTop = 5

func BuildOverview(ds *fleet.Dataset) Overview {
	byID := ds.VehicleByID()
	total, _, _ := costStats(ds.Maintenances)

	byUse := top(countBy(useVehicleIDs(ds.Uses)), overviewTop)
	for i := range byUse {
		byUse[i].Label = vehicleLabel(byID, byUse[i].Key)
	}
	byCost := top(costByVehicle(ds.Maintenances), overviewTop)
	for i := range byCost {
		byCost[i].Label = vehicleLabel(byID, byCost[i].Key)
	}

	return Overview{
		DatasetName:       ds.Name,
		Vehicles:          len(ds.Vehicles),
		Uses:              len(ds.Uses),
		Maintenances:      len(ds.Maintenances),
		Users:             len(ds.Users),
		Punches:           ds.Punches.Len(),
		TotalCost:         total,
		VehicleStatus:     countBy(vehicleField(ds.Vehicles, func(v fleet.Vehicle) string { return v.Status })),
		VehicleTypes:      countBy(vehicleField(ds.Vehicles, func(v fleet.Vehicle) string { return v.Type })),
		TopVehiclesByUse:  byUse,
		TopVehiclesByCost: byCost,
	}
}

func vehicleField(vs []fleet.Vehicle, f func(fleet.Vehicle) string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = f(v)
	}
	return out
}

func useVehicleIDs(us []fleet.VehicleUse) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.VehicleID
	}
	return out
}
