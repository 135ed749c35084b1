package report

import (
	"frota/internal/fleet"

	"github.com/shopspring/decimal"
)

// TripDuration is the length of one vehicle use. Trips missing either date
// are left out.
type TripDuration struct {
	ID        string          `json:"id"`
	VehicleID string          `json:"vehicle_id"`
	Driver    string          `json:"utilizador"`
	Hours     decimal.Decimal `json:"hours"`
}

type UsageReport struct {
	Trips           int             `json:"trips"`
	TimedTrips      int             `json:"timed_trips"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	MeanHours       decimal.Decimal `json:"mean_hours"`
	TopDrivers      []Count         `json:"top_drivers"`
	LongestDrivers  []Amount        `json:"longest_mean_drivers"`
	TopVehicles     []Count         `json:"top_vehicles"`
	MostUsedVehicle *Count          `json:"most_used_vehicle"`
	Durations       []TripDuration  `json:"durations"`
}

const defaultUsageTop = 10

// BuildUsage summarizes vehicle uses. n bounds the ranking lists (10 when
// n <= 0). Durations are kept as computed, including negative ones from
// rows whose end precedes their start.
func BuildUsage(ds *fleet.Dataset, n int) UsageReport {
	if n <= 0 {
		n = defaultUsageTop
	}
	byID := ds.VehicleByID()

	r := UsageReport{
		Trips:      len(ds.Uses),
		TotalHours: decimal.Zero,
		MeanHours:  decimal.Zero,
		Durations:  []TripDuration{},
	}

	var drivers []string
	var timedDrivers []string
	var timedHours []decimal.Decimal
	for _, u := range ds.Uses {
		drivers = append(drivers, u.Driver)
		d, ok := u.Duration()
		if !ok {
			continue
		}
		h := durationHours(d)
		r.Durations = append(r.Durations, TripDuration{ID: u.ID, VehicleID: u.VehicleID, Driver: u.Driver, Hours: h})
		r.TotalHours = r.TotalHours.Add(h)
		timedDrivers = append(timedDrivers, u.Driver)
		timedHours = append(timedHours, h)
	}
	r.TimedTrips = len(r.Durations)
	r.MeanHours = mean(r.TotalHours, r.TimedTrips)
	r.TopDrivers = top(countBy(drivers), n)
	r.LongestDrivers = top(meanBy(timedDrivers, timedHours), n)

	vehicles := countBy(useVehicleIDs(ds.Uses))
	for i := range vehicles {
		vehicles[i].Label = vehicleLabel(byID, vehicles[i].Key)
	}
	if len(vehicles) > 0 {
		most := vehicles[0]
		r.MostUsedVehicle = &most
	}
	r.TopVehicles = top(vehicles, n)
	return r
}

// meanBy averages values per key, ordered by mean (desc) then key.
func meanBy(keys []string, values []decimal.Decimal) []Amount {
	counts := make(map[string]int)
	for _, k := range keys {
		counts[k]++
	}
	out := sumBy(keys, values)
	for i := range out {
		out[i].Value = mean(out[i].Value, counts[out[i].Key])
	}
	sortAmounts(out)
	return out
}
