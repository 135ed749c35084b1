package report

import (
	"sort"

	"frota/internal/hours"

	"github.com/shopspring/decimal"
)

// PeriodAll disables the period type filter.
const PeriodAll = "ALL"

type HoursFilter struct {
	PeriodType string
	Users      []string
}

type HoursReport struct {
	PeriodType string          `json:"period_type"`
	TotalHours decimal.Decimal `json:"total_hours"`
	MeanHours  decimal.Decimal `json:"mean_hours"`
	UserCount  int             `json:"users"`
	Periods    int             `json:"periods"`
	Skipped    int             `json:"skipped_punches"`
	ByUser     []Amount        `json:"by_user"`
	Daily      []Amount        `json:"daily,omitempty"`
	Users      []string        `json:"available_users"`
	Entries    []hours.Entry   `json:"entries"`
}

// BuildHours filters an available engine result and computes the report
// metrics. MeanHours is the mean per filtered row. Daily evolution is only
// filled when the filter selects DAY rows.
func BuildHours(res hours.Result, f HoursFilter) HoursReport {
	pt := f.PeriodType
	if pt == "" {
		pt = PeriodAll
	}

	r := HoursReport{
		PeriodType: pt,
		TotalHours: decimal.Zero,
		MeanHours:  decimal.Zero,
		Skipped:    res.Skipped,
		Entries:    []hours.Entry{},
		ByUser:     []Amount{},
	}

	var allUsers []string
	var keys []string
	var values []decimal.Decimal
	periods := make(map[string]struct{})
	for _, e := range res.Sorted() {
		allUsers = append(allUsers, e.User)
		if pt != PeriodAll && string(e.PeriodType) != pt {
			continue
		}
		if !matchAny(f.Users, e.User) {
			continue
		}
		r.Entries = append(r.Entries, e)
		r.TotalHours = r.TotalHours.Add(e.Hours)
		keys = append(keys, e.User)
		values = append(values, e.Hours)
		periods[e.Period] = struct{}{}
	}

	r.Users = distinctSorted(allUsers)
	r.UserCount = len(distinctSorted(keys))
	r.Periods = len(periods)
	r.MeanHours = mean(r.TotalHours, len(r.Entries))
	r.ByUser = sumBy(keys, values)

	if pt == string(hours.PeriodDay) {
		r.Daily = dailyEvolution(r.Entries)
	}
	return r
}

func dailyEvolution(entries []hours.Entry) []Amount {
	sums := make(map[string]decimal.Decimal)
	for _, e := range entries {
		sums[e.Period] = sums[e.Period].Add(e.Hours)
	}
	out := make([]Amount, 0, len(sums))
	for k, v := range sums {
		out = append(out, Amount{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
