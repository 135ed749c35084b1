package report

import (
	"testing"
	"time"

	"frota/internal/fleet"
	"frota/internal/hours"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fixture ───────────────────────────────────────────────────────────────────

func ts(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func cost(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fixture() *fleet.Dataset {
	return &fleet.Dataset{
		ID:   uuid.New(),
		Name: "setembro",
		Vehicles: []fleet.Vehicle{
			{ID: "veh-aaaaaaaa-1", Plate: "ABC1234", Brand: "CHEVROLET", Model: "CELTA", Status: fleet.StatusDisponivel, Type: "CARRO"},
			{ID: "veh-bbbbbbbb-2", Plate: "XYZ9876", Status: fleet.StatusEmUso, Type: "CARRO"},
			{ID: "veh-cccccccc-3", Plate: "MOT0001", Status: fleet.StatusDisponivel, Type: "MOTO"},
		},
		Uses: []fleet.VehicleUse{
			{ID: "u1", VehicleID: "veh-aaaaaaaa-1", Driver: "Ana", Start: ts("2025-09-01 08:00"), End: ts("2025-09-01 10:00")},
			{ID: "u2", VehicleID: "veh-aaaaaaaa-1", Driver: "Ana", Start: ts("2025-09-02 08:00"), End: ts("2025-09-02 12:00")},
			{ID: "u3", VehicleID: "veh-bbbbbbbb-2", Driver: "Bia", Start: ts("2025-09-02 08:00"), End: ts("2025-09-02 09:30")},
			{ID: "u4", VehicleID: "ghost-vehicle-id", Driver: "Bia", Start: ts("2025-09-03 08:00")},
		},
		Maintenances: []fleet.Maintenance{
			{ID: "m1", VehicleID: "veh-aaaaaaaa-1", Date: ts("2025-08-10 00:00"), Cost: cost("100.00")},
			{ID: "m2", VehicleID: "veh-aaaaaaaa-1", Date: ts("2025-09-05 00:00"), Cost: cost("250.50")},
			{ID: "m3", VehicleID: "veh-bbbbbbbb-2", Date: ts("2025-09-01 00:00"), Cost: cost("1000")},
			{ID: "m4", VehicleID: "veh-aaaaaaaa-1", Date: nil, Cost: nil},
		},
		Punches: &fleet.PunchTable{Records: []fleet.PunchRecord{
			{ID: "p1", User: "ana@x.com", Type: fleet.TipoEntrada, Timestamp: ts("2025-09-01 08:00")},
			{ID: "p2", User: "ana@x.com", Type: fleet.TipoSaida, Timestamp: ts("2025-09-01 16:00")},
			{ID: "p3", User: "ana@x.com", Type: fleet.TipoEntrada, Timestamp: ts("2025-09-02 09:00")},
			{ID: "p4", User: "ana@x.com", Type: fleet.TipoSaida, Timestamp: ts("2025-09-02 13:30")},
			{ID: "p5", User: "bia@x.com", Type: fleet.TipoEntrada, Timestamp: ts("2025-09-01 09:15")},
			{ID: "p6", User: "bia@x.com", Type: fleet.TipoSaida, Timestamp: ts("2025-09-01 12:15")},
			{ID: "p7", User: "bia@x.com", Type: "PAUSA", Timestamp: nil},
		}},
	}
}

// ── Tests: overview / vehicles ────────────────────────────────────────────────

func TestBuildOverview(t *testing.T) {
	o := BuildOverview(fixture())

	assert.Equal(t, 3, o.Vehicles)
	assert.Equal(t, 4, o.Uses)
	assert.Equal(t, 7, o.Punches)
	assert.Equal(t, "1350.5", o.TotalCost.String())

	require.Len(t, o.TopVehiclesByUse, 3)
	assert.Equal(t, Count{Key: "veh-aaaaaaaa-1", Label: "ABC1234", Count: 2}, o.TopVehiclesByUse[0])
	// Unknown vehicles are labelled with their id prefix.
	assert.Equal(t, "ghost-ve", o.TopVehiclesByUse[1].Label)

	require.Len(t, o.TopVehiclesByCost, 2)
	assert.Equal(t, "XYZ9876", o.TopVehiclesByCost[0].Label)
	assert.Equal(t, "1000", o.TopVehiclesByCost[0].Value.String())

	assert.Equal(t, []Count{{Key: "CARRO", Count: 2}, {Key: "MOTO", Count: 1}}, o.VehicleTypes)
}

func TestBuildVehicles_Filter(t *testing.T) {
	r := BuildVehicles(fixture(), VehicleFilter{Types: []string{"CARRO"}})
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Available)
	assert.Equal(t, 1, r.InUse)
	assert.Len(t, r.TypeOptions, 2, "options ignore the filter")

	r = BuildVehicles(fixture(), VehicleFilter{Status: []string{fleet.StatusEmUso}, Types: []string{"MOTO"}})
	assert.Equal(t, 0, r.Total)
	assert.NotNil(t, r.Items)
}

// ── Tests: usage ──────────────────────────────────────────────────────────────

func TestBuildUsage(t *testing.T) {
	r := BuildUsage(fixture(), 0)

	assert.Equal(t, 4, r.Trips)
	assert.Equal(t, 3, r.TimedTrips)
	assert.Equal(t, "7.5", r.TotalHours.String())
	assert.Equal(t, "2.5", r.MeanHours.String())

	assert.Equal(t, []Count{{Key: "Ana", Count: 2}, {Key: "Bia", Count: 2}}, r.TopDrivers)
	require.Len(t, r.LongestDrivers, 2)
	assert.Equal(t, "Ana", r.LongestDrivers[0].Key)
	assert.Equal(t, "3", r.LongestDrivers[0].Value.String())

	require.NotNil(t, r.MostUsedVehicle)
	assert.Equal(t, "ABC1234", r.MostUsedVehicle.Label)
}

func TestBuildUsage_TopBound(t *testing.T) {
	r := BuildUsage(fixture(), 1)
	assert.Len(t, r.TopDrivers, 1)
	assert.Len(t, r.TopVehicles, 1)
}

// ── Tests: maintenance ────────────────────────────────────────────────────────

func TestBuildMaintenance(t *testing.T) {
	r := BuildMaintenance(fixture(), 0)

	assert.Equal(t, 4, r.Count)
	assert.Equal(t, "1350.5", r.TotalCost.String())
	assert.Equal(t, "450.17", r.MeanCost.String())
	require.NotNil(t, r.MaxCost)
	assert.Equal(t, "1000", r.MaxCost.String())

	require.Len(t, r.Monthly, 2)
	assert.Equal(t, "2025-08", r.Monthly[0].Key)
	assert.Equal(t, "2025-09", r.Monthly[1].Key)
	assert.Equal(t, "1250.5", r.Monthly[1].Value.String())
}

func TestBuildVehicleMaintenance(t *testing.T) {
	r, ok := BuildVehicleMaintenance(fixture(), "veh-aaaaaaaa-1")
	require.True(t, ok)

	assert.Equal(t, "ABC1234 - CHEVROLET CELTA", r.Label)
	assert.Equal(t, 3, r.Count)
	assert.Equal(t, "350.5", r.TotalCost.String())
	assert.Equal(t, "175.25", r.MeanCost.String())
	// Newest first, undated last.
	assert.Equal(t, []string{"m2", "m1", "m4"}, []string{r.Items[0].ID, r.Items[1].ID, r.Items[2].ID})

	_, ok = BuildVehicleMaintenance(fixture(), "veh-cccccccc-3")
	assert.False(t, ok)
}

func TestVehiclesWithMaintenance(t *testing.T) {
	got := VehiclesWithMaintenance(fixture())
	assert.Equal(t, []Count{
		{Key: "veh-aaaaaaaa-1", Label: "ABC1234", Count: 3},
		{Key: "veh-bbbbbbbb-2", Label: "XYZ9876", Count: 1},
	}, got)
}

// ── Tests: punches ────────────────────────────────────────────────────────────

func TestBuildPunches(t *testing.T) {
	r := BuildPunches(fixture(), 0)

	assert.Equal(t, 7, r.Total)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, []string{"ana@x.com", "bia@x.com"}, r.Users)
	assert.Equal(t, Count{Key: "ana@x.com", Count: 4}, r.TopUsers[0])
	require.NotEmpty(t, r.ByHour)
	assert.Equal(t, "08", r.ByHour[0].Key)
	assert.Equal(t, "16", r.ByHour[len(r.ByHour)-1].Key)
}

func TestBuildUserPunches(t *testing.T) {
	ds := fixture()
	res := hours.Compute(ds.Punches)
	now := time.Date(2025, 9, 2, 18, 0, 0, 0, time.UTC)

	r, ok := BuildUserPunches(ds, "ana@x.com", res, now)
	require.True(t, ok)

	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Entries)
	assert.Equal(t, 2, r.Exits)
	require.NotNil(t, r.HoursToday)
	assert.Equal(t, "4.5", r.HoursToday.String())
	require.NotNil(t, r.HoursThisMonth)
	assert.Equal(t, "12.5", r.HoursThisMonth.String())
	assert.Len(t, r.Daily, 2)
	assert.Len(t, r.Monthly, 1)

	_, ok = BuildUserPunches(ds, "nobody", res, now)
	assert.False(t, ok)
}

func TestBuildUserPunches_UnavailableHours(t *testing.T) {
	ds := fixture()
	res := hours.Result{Reason: hours.ReasonNoPairs}

	r, ok := BuildUserPunches(ds, "bia@x.com", res, time.Now())
	require.True(t, ok)
	assert.Equal(t, hours.ReasonNoPairs, r.HoursReason)
	assert.Nil(t, r.HoursToday)
	assert.Empty(t, r.Daily)
	// The punch without a timestamp is listed last.
	assert.Equal(t, "p7", r.History[len(r.History)-1].ID)
}

// ── Tests: hours report ───────────────────────────────────────────────────────

func TestBuildHours(t *testing.T) {
	res := hours.Compute(fixture().Punches)
	require.True(t, res.Available())

	day := BuildHours(res, HoursFilter{PeriodType: "DAY"})
	assert.Len(t, day.Entries, 3)
	assert.Equal(t, "15.5", day.TotalHours.String())
	assert.Equal(t, "5.17", day.MeanHours.String())
	assert.Equal(t, 2, day.UserCount)
	assert.Equal(t, 2, day.Periods)
	assert.Equal(t, "ana@x.com", day.ByUser[0].Key)
	require.Len(t, day.Daily, 2)
	assert.Equal(t, "2025-09-01", day.Daily[0].Key)
	assert.Equal(t, "11", day.Daily[0].Value.String())

	month := BuildHours(res, HoursFilter{PeriodType: "MONTH", Users: []string{"bia@x.com"}})
	require.Len(t, month.Entries, 1)
	assert.Equal(t, "3", month.TotalHours.String())
	assert.Nil(t, month.Daily)
	assert.Equal(t, []string{"ana@x.com", "bia@x.com"}, month.Users)

	all := BuildHours(res, HoursFilter{})
	assert.Equal(t, PeriodAll, all.PeriodType)
	assert.Len(t, all.Entries, 5)
}
