package report

import "frota/internal/fleet"

// VehicleFilter selects vehicles by status and type. An empty list matches
// every value.
type VehicleFilter struct {
	Status []string
	Types  []string
}

func (f VehicleFilter) match(v fleet.Vehicle) bool {
	return matchAny(f.Status, v.Status) && matchAny(f.Types, v.Type)
}

func matchAny(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

type VehicleReport struct {
	Items         []fleet.Vehicle `json:"items"`
	Total         int             `json:"total"`
	Available     int             `json:"available"`
	InUse         int             `json:"in_use"`
	StatusOptions []Count         `json:"status_options"`
	TypeOptions   []Count         `json:"type_options"`
}

// BuildVehicles lists the vehicles matching f. The option lists always cover
// the whole fleet so a client can offer every filter value.
func BuildVehicles(ds *fleet.Dataset, f VehicleFilter) VehicleReport {
	r := VehicleReport{
		Items:         []fleet.Vehicle{},
		StatusOptions: countBy(vehicleField(ds.Vehicles, func(v fleet.Vehicle) string { return v.Status })),
		TypeOptions:   countBy(vehicleField(ds.Vehicles, func(v fleet.Vehicle) string { return v.Type })),
	}
	for _, v := range ds.Vehicles {
		if !f.match(v) {
			continue
		}
		r.Items = append(r.Items, v)
		switch v.Status {
		case fleet.StatusDisponivel:
			r.Available++
		case fleet.StatusEmUso:
			r.InUse++
		}
	}
	r.Total = len(r.Items)
	return r
}
