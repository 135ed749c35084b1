package report

import (
	"sort"
	"time"

	"frota/internal/fleet"

	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

type MaintenanceReport struct {
	Count         int                 `json:"count"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
	MeanCost      decimal.Decimal     `json:"mean_cost"`
	MaxCost       *decimal.Decimal    `json:"max_cost"`
	CostByVehicle []Amount            `json:"cost_by_vehicle"`
	Monthly       []Amount            `json:"monthly"`
	Items         []fleet.Maintenance `json:"items"`
}

const defaultMaintenanceTop = 10

// BuildMaintenance summarizes maintenance costs. Rows without a parseable
// cost count towards Count but not towards the cost figures.
func BuildMaintenance(ds *fleet.Dataset, n int) MaintenanceReport {
	if n <= 0 {
		n = defaultMaintenanceTop
	}
	byID := ds.VehicleByID()
	total, avg, highest := costStats(ds.Maintenances)

	byVehicle := top(costByVehicle(ds.Maintenances), n)
	for i := range byVehicle {
		byVehicle[i].Label = vehicleLabel(byID, byVehicle[i].Key)
	}

	items := ds.Maintenances
	if items == nil {
		items = []fleet.Maintenance{}
	}
	return MaintenanceReport{
		Count:         len(ds.Maintenances),
		TotalCost:     total,
		MeanCost:      avg,
		MaxCost:       highest,
		CostByVehicle: byVehicle,
		Monthly:       monthlyCost(ds.Maintenances),
		Items:         items,
	}
}

type VehicleMaintenance struct {
	Vehicle   *fleet.Vehicle      `json:"vehicle"`
	Label     string              `json:"label"`
	Count     int                 `json:"count"`
	TotalCost decimal.Decimal     `json:"total_cost"`
	MeanCost  decimal.Decimal     `json:"mean_cost"`
	Monthly   []Amount            `json:"monthly"`
	Items     []fleet.Maintenance `json:"items"`
}

// BuildVehicleMaintenance is the history of a single vehicle, newest first.
// ok is false when the vehicle has no maintenance rows.
func BuildVehicleMaintenance(ds *fleet.Dataset, vehicleID string) (VehicleMaintenance, bool) {
	var rows []fleet.Maintenance
	for _, m := range ds.Maintenances {
		if m.VehicleID == vehicleID {
			rows = append(rows, m)
		}
	}
	if len(rows) == 0 {
		return VehicleMaintenance{}, false
	}

	// Undated rows go last.
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Date, rows[j].Date
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})

	byID := ds.VehicleByID()
	out := VehicleMaintenance{
		Label: vehicleLabel(byID, vehicleID),
		Count: len(rows),
		Items: rows,
	}
	if v, ok := byID[vehicleID]; ok {
		out.Vehicle = &v
		out.Label = v.Plate + " - " + v.Brand + " " + v.Model
	}
	out.TotalCost, out.MeanCost, _ = costStats(rows)
	out.Monthly = monthlyCost(rows)
	return out, true
}

// VehiclesWithMaintenance lists the vehicles that appear in the maintenance
// table, in first-seen order.
func VehiclesWithMaintenance(ds *fleet.Dataset) []Count {
	byID := ds.VehicleByID()
	idx := make(map[string]int)
	out := []Count{}
	for _, m := range ds.Maintenances {
		if m.VehicleID == "" {
			continue
		}
		i, ok := idx[m.VehicleID]
		if !ok {
			i = len(out)
			idx[m.VehicleID] = i
			out = append(out, Count{Key: m.VehicleID, Label: vehicleLabel(byID, m.VehicleID)})
		}
		out[i].Count++
	}
	return out
}

// costStats returns total, mean and max over the rows that carry a cost.
func costStats(ms []fleet.Maintenance) (total, avg decimal.Decimal, highest *decimal.Decimal) {
	total = decimal.Zero
	n := 0
	for _, m := range ms {
		if m.Cost == nil {
			continue
		}
		c := *m.Cost
		total = total.Add(c)
		n++
		if highest == nil || c.GreaterThan(*highest) {
			highest = &c
		}
	}
	return total.Round(2), mean(total, n), highest
}

func costByVehicle(ms []fleet.Maintenance) []Amount {
	var keys []string
	var values []decimal.Decimal
	for _, m := range ms {
		if m.Cost == nil {
			continue
		}
		keys = append(keys, m.VehicleID)
		values = append(values, *m.Cost)
	}
	out := sumBy(keys, values)
	for i := range out {
		out[i].Value = out[i].Value.Round(2)
	}
	return out
}

// monthlyCost sums costs per calendar month of the maintenance date, in
// chronological order.
func monthlyCost(ms []fleet.Maintenance) []Amount {
	sums := make(map[string]decimal.Decimal)
	for _, m := range ms {
		if m.Cost == nil || m.Date == nil {
			continue
		}
		k := monthOf(*m.Date)
		sums[k] = sums[k].Add(*m.Cost)
	}
	out := make([]Amount, 0, len(sums))
	for k, v := range sums {
		out = append(out, Amount{Key: k, Value: v.Round(2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// monthOf is the "2006-01" key of t.
func monthOf(t time.Time) string { return t.Format(monthLayout) }
