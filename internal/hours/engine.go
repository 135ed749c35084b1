// Package hours derives worked hours from clock punches.
//
// Each user's punches are sorted, split by calendar day (in the timestamp's own
// location) and every ENTRADA is paired with the earliest SAÍDA of the same day
// that comes strictly after it. Exits are not consumed by a match, so an
// ENTRADA, ENTRADA, SAÍDA sequence counts both intervals. Day totals are then
// rolled up into month totals.
package hours

import (
	"sort"
	"time"

	"frota/internal/fleet"

	"github.com/shopspring/decimal"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Compute runs the whole derivation over a punch table snapshot. It never
// fails on individual records: punches without a timestamp are counted in
// Result.Skipped and left out of pairing.
func Compute(table *fleet.PunchTable) Result {
	if table == nil {
		return Result{Reason: ReasonMissingInput}
	}

	byUser := make(map[string][]fleet.PunchRecord)
	skipped := 0
	for _, p := range table.Records {
		if !p.HasTimestamp() {
			skipped++
			continue
		}
		byUser[p.User] = append(byUser[p.User], p)
	}
	if len(byUser) == 0 {
		return Result{Reason: ReasonNoUsableRecords, Skipped: skipped}
	}

	var entries []Entry
	for user, punches := range byUser {
		entries = append(entries, computeUser(user, punches)...)
	}
	if len(entries) == 0 {
		return Result{Reason: ReasonNoPairs, Skipped: skipped}
	}
	return Result{Entries: entries, Skipped: skipped}
}

// dayBucket collects one user's entry and exit instants for a calendar day.
// Both slices stay ascending because they are filled from sorted punches.
type dayBucket struct {
	day     string
	month   string
	entries []time.Time
	exits   []time.Time
}

// computeUser owns punches (a copy built by Compute) and may reorder it.
func computeUser(user string, punches []fleet.PunchRecord) []Entry {
	sort.SliceStable(punches, func(i, j int) bool {
		return punches[i].Timestamp.Before(*punches[j].Timestamp)
	})

	var days []*dayBucket
	index := make(map[string]*dayBucket)
	for _, p := range punches {
		ts := *p.Timestamp
		key := ts.Format(dayLayout)
		b, ok := index[key]
		if !ok {
			b = &dayBucket{day: key, month: ts.Format(monthLayout)}
			index[key] = b
			days = append(days, b)
		}
		switch p.Kind() {
		case fleet.PunchEntry:
			b.entries = append(b.entries, ts)
		case fleet.PunchExit:
			b.exits = append(b.exits, ts)
		}
	}

	var out []Entry
	var months []string
	monthTotals := make(map[string]decimal.Decimal)
	for _, b := range days {
		worked := pairDay(b.entries, b.exits)
		if worked <= 0 {
			continue
		}
		h := toHours(worked)
		out = append(out, Entry{User: user, Period: b.day, PeriodType: PeriodDay, Hours: h})

		if _, seen := monthTotals[b.month]; !seen {
			months = append(months, b.month)
		}
		monthTotals[b.month] = monthTotals[b.month].Add(h)
	}

	// Month totals are sums of the already rounded day values, so a month
	// always equals the sum of its days as reported.
	for _, m := range months {
		out = append(out, Entry{User: user, Period: m, PeriodType: PeriodMonth, Hours: monthTotals[m].Round(2)})
	}
	return out
}

// pairDay sums, for every entry, the gap to the first exit strictly after it.
// Negative gaps are floored at zero.
func pairDay(entries, exits []time.Time) time.Duration {
	var total time.Duration
	for _, in := range entries {
		i := sort.Search(len(exits), func(i int) bool { return exits[i].After(in) })
		if i == len(exits) {
			continue
		}
		if d := exits[i].Sub(in); d > 0 {
			total += d
		}
	}
	return total
}

func toHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(nanosPerHour).Round(2)
}
