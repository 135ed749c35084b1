package ingest

import (
	"embed"
	"io"
)

//go:embed sample/*.csv
var sampleFS embed.FS

// SampleFiles returns the built-in demo export (four vehicles, a handful of
// trips, maintenances and punches).
func SampleFiles() (Files, error) {
	open := func(name string) (io.Reader, error) {
		return sampleFS.Open("sample/" + name + ".csv")
	}
	var (
		f   Files
		err error
	)
	if f.Vehicles, err = open(FileVehicles); err != nil {
		return Files{}, err
	}
	if f.VehicleUses, err = open(FileVehicleUses); err != nil {
		return Files{}, err
	}
	if f.Maintenances, err = open(FileMaintenances); err != nil {
		return Files{}, err
	}
	if f.Users, err = open(FileUsers); err != nil {
		return Files{}, err
	}
	if f.PointRecords, err = open(FilePointRecords); err != nil {
		return Files{}, err
	}
	return f, nil
}
