package hours

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PeriodType tags the granularity of Entry.Period.
type PeriodType string

const (
	PeriodDay   PeriodType = "DAY"
	PeriodMonth PeriodType = "MONTH"
)

// Entry is one row of the worked-hours table. Period is "2006-01-02" for DAY
// rows and "2006-01" for MONTH rows.
type Entry struct {
	User       string          `json:"user"`
	Period     string          `json:"period"`
	PeriodType PeriodType      `json:"period_type"`
	Hours      decimal.Decimal `json:"hours"`
}

// Reason explains why a Result carries no entries.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMissingInput    Reason = "missing_input"
	ReasonNoUsableRecords Reason = "no_usable_records"
	ReasonNoPairs         Reason = "no_pairs"
)

// Result is the engine output. An unavailable result (Reason != ReasonNone)
// means the computation could not be made; it is not a report of zero hours.
type Result struct {
	Entries []Entry
	Reason  Reason
	// Skipped counts punches left out because their timestamp was missing.
	Skipped int
}

func (r Result) Available() bool { return r.Reason == ReasonNone }

// Sorted returns a copy of the entries ordered by user, period type (DAY
// first) and period. The engine itself guarantees no order.
func (r Result) Sorted() []Entry {
	out := make([]Entry, len(r.Entries))
	copy(out, r.Entries)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.User != b.User {
			return a.User < b.User
		}
		if a.PeriodType != b.PeriodType {
			return a.PeriodType == PeriodDay
		}
		return a.Period < b.Period
	})
	return out
}

// ForUser returns the entries of a single user.
func (r Result) ForUser(user string) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.User == user {
			out = append(out, e)
		}
	}
	return out
}
