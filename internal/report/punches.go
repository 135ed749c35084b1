package report

import (
	"fmt"
	"sort"
	"time"

	"frota/internal/fleet"
	"frota/internal/hours"

	"github.com/shopspring/decimal"
)

type PunchReport struct {
	Total    int      `json:"total"`
	Skipped  int      `json:"without_timestamp"`
	Types    []Count  `json:"types"`
	ByHour   []Count  `json:"by_hour"`
	TopUsers []Count  `json:"top_users"`
	Users    []string `json:"users"`
}

const defaultPunchTop = 10

// BuildPunches summarizes the punch table. ByHour only covers punches with a
// timestamp and is ordered by hour of day.
func BuildPunches(ds *fleet.Dataset, n int) PunchReport {
	if n <= 0 {
		n = defaultPunchTop
	}
	var records []fleet.PunchRecord
	if ds.Punches != nil {
		records = ds.Punches.Records
	}

	var types, users, hourKeys []string
	skipped := 0
	for _, p := range records {
		types = append(types, p.Type)
		users = append(users, p.User)
		if !p.HasTimestamp() {
			skipped++
			continue
		}
		hourKeys = append(hourKeys, fmt.Sprintf("%02d", p.Timestamp.Hour()))
	}

	byHour := countBy(hourKeys)
	sort.Slice(byHour, func(i, j int) bool { return byHour[i].Key < byHour[j].Key })

	return PunchReport{
		Total:    len(records),
		Skipped:  skipped,
		Types:    countBy(types),
		ByHour:   byHour,
		TopUsers: top(countBy(users), n),
		Users:    distinctSorted(users),
	}
}

type UserPunches struct {
	User           string              `json:"user"`
	Total          int                 `json:"total"`
	Entries        int                 `json:"entries"`
	Exits          int                 `json:"exits"`
	Types          []Count             `json:"types"`
	HoursToday     *decimal.Decimal    `json:"hours_today"`
	HoursThisMonth *decimal.Decimal    `json:"hours_this_month"`
	HoursReason    hours.Reason        `json:"hours_reason,omitempty"`
	History        []fleet.PunchRecord `json:"history"`
	Daily          []hours.Entry       `json:"daily"`
	Monthly        []hours.Entry       `json:"monthly"`
}

const dailyWindow = 30

// BuildUserPunches is the detail view of one user. res is the worked-hours
// result of the same dataset and now fixes "today" and "this month" (in
// now's location). ok is false when the user has no punches.
func BuildUserPunches(ds *fleet.Dataset, user string, res hours.Result, now time.Time) (UserPunches, bool) {
	var history []fleet.PunchRecord
	if ds.Punches != nil {
		for _, p := range ds.Punches.Records {
			if p.User == user {
				history = append(history, p)
			}
		}
	}
	if len(history) == 0 {
		return UserPunches{}, false
	}

	sort.SliceStable(history, func(i, j int) bool {
		a, b := history[i].Timestamp, history[j].Timestamp
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})

	out := UserPunches{
		User:        user,
		Total:       len(history),
		History:     history,
		HoursReason: res.Reason,
		Daily:       []hours.Entry{},
		Monthly:     []hours.Entry{},
	}
	types := make([]string, len(history))
	for i, p := range history {
		types[i] = p.Type
		switch p.Kind() {
		case fleet.PunchEntry:
			out.Entries++
		case fleet.PunchExit:
			out.Exits++
		}
	}
	out.Types = countBy(types)

	if !res.Available() {
		return out, true
	}

	today := now.Format("2006-01-02")
	month := monthOf(now)
	for _, e := range (hours.Result{Entries: res.ForUser(user)}).Sorted() {
		switch e.PeriodType {
		case hours.PeriodDay:
			out.Daily = append(out.Daily, e)
			if e.Period == today {
				out.HoursToday = &e.Hours
			}
		case hours.PeriodMonth:
			out.Monthly = append(out.Monthly, e)
			if e.Period == month {
				out.HoursThisMonth = &e.Hours
			}
		}
	}
	if len(out.Daily) > dailyWindow {
		out.Daily = out.Daily[len(out.Daily)-dailyWindow:]
	}
	return out, true
}

func distinctSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := []string{}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
