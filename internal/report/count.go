// Package report builds the dashboard views of a fleet dataset. Every
// function is pure: it reads a *fleet.Dataset snapshot and returns plain
// values ready to be serialized.
package report

import (
	"sort"
	"time"

	"frota/internal/fleet"

	"github.com/shopspring/decimal"
)

// Count is one bucket of a frequency table.
type Count struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
}

// Amount is one bucket of a summed or averaged table.
type Amount struct {
	Key   string          `json:"key"`
	Label string          `json:"label,omitempty"`
	Value decimal.Decimal `json:"value"`
}

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

func durationHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(nanosPerHour).Round(2)
}

// countBy tallies keys, skipping empty ones, and orders buckets by count
// (desc) then key.
func countBy(keys []string) []Count {
	idx := make(map[string]int)
	out := []Count{}
	for _, k := range keys {
		if k == "" {
			continue
		}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count{Key: k})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// sumBy totals values per key, skipping empty keys, ordered by value (desc)
// then key.
func sumBy(keys []string, values []decimal.Decimal) []Amount {
	idx := make(map[string]int)
	out := []Amount{}
	for i, k := range keys {
		if k == "" {
			continue
		}
		j, ok := idx[k]
		if !ok {
			j = len(out)
			idx[k] = j
			out = append(out, Amount{Key: k, Value: decimal.Zero})
		}
		out[j].Value = out[j].Value.Add(values[i])
	}
	sortAmounts(out)
	return out
}

func sortAmounts(out []Amount) {
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
}

// top keeps the first n items; n <= 0 keeps everything.
func top[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// mean divides sum by n, rounded to cents. n == 0 yields zero.
func mean(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// vehicleLabel is the plate when the vehicle is known and has one, else the
// first 8 characters of its id.
func vehicleLabel(byID map[string]fleet.Vehicle, id string) string {
	if v, ok := byID[id]; ok && v.Plate != "" {
		return v.Plate
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
