package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultOffset is the fixed local offset of the single deployment locale (UTC-3).
const DefaultOffset = -3 * time.Hour

// DateGroup holds the open tasks due on one future date.
type DateGroup struct {
	Date  string `json:"date"`
	Tasks []Task `json:"tasks"`
}

// InvalidTask is a record excluded from aggregation because it is structurally broken.
type InvalidTask struct {
	Task Task  `json:"task"`
	Err  error `json:"-"`
}

// Result partitions a task snapshot into five disjoint buckets.
type Result struct {
	Today     string      `json:"today"`
	Overdue   []Task      `json:"overdue"`
	DueToday  []Task      `json:"due_today"`
	Upcoming  []DateGroup `json:"upcoming"`
	NoDate    []Task      `json:"no_date"`
	Completed []Task      `json:"completed"`

	Invalid []InvalidTask `json:"-"`
}

// Len returns the number of tasks placed in the five buckets.
func (r Result) Len() int {
	n := len(r.Overdue) + len(r.DueToday) + len(r.NoDate) + len(r.Completed)
	for _, g := range r.Upcoming {
		n += len(g.Tasks)
	}
	return n
}

// Empty reports whether every bucket is empty.
func (r Result) Empty() bool {
	return r.Len() == 0
}

// Aggregator classifies tasks relative to "today" at a fixed UTC offset.
type Aggregator struct {
	Offset time.Duration
}

func NewAggregator(offset time.Duration) Aggregator {
	return Aggregator{Offset: offset}
}

// Location returns the fixed zone the aggregator interprets dates in.
func (a Aggregator) Location() *time.Location {
	return FixedZone(a.Offset)
}

// Today returns local midnight of the day containing now.
func (a Aggregator) Today(now time.Time) time.Time {
	local := now.In(a.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// Aggregate partitions tasks in a single pass. It never fails: malformed due dates
// land in NoDate and structurally invalid records are reported in Result.Invalid.
func (a Aggregator) Aggregate(tasks []Task, now time.Time) Result {
	loc := a.Location()
	today := a.Today(now)
	res := Result{
		Today:     today.Format(DateLayout),
		Overdue:   []Task{},
		DueToday:  []Task{},
		Upcoming:  []DateGroup{},
		NoDate:    []Task{},
		Completed: []Task{},
	}

	byDate := make(map[string][]Task)
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			res.Invalid = append(res.Invalid, InvalidTask{Task: t, Err: err})
			continue
		}
		if t.Completed {
			res.Completed = append(res.Completed, t)
			continue
		}
		due, ok := ParseDueDate(t.DueDate, loc)
		if !ok {
			res.NoDate = append(res.NoDate, t)
			continue
		}
		switch {
		case due.Before(today):
			res.Overdue = append(res.Overdue, t)
		case due.Equal(today):
			res.DueToday = append(res.DueToday, t)
		default:
			key := due.Format(DateLayout)
			byDate[key] = append(byDate[key], t)
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		res.Upcoming = append(res.Upcoming, DateGroup{Date: d, Tasks: byDate[d]})
	}
	return res
}

// ParseDueDate interprets a stored due date at local midnight in loc.
// ok is false for empty or malformed text.
func ParseDueDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FixedZone names a fixed offset the way it is written in config, e.g. "-03:00".
func FixedZone(offset time.Duration) *time.Location {
	secs := int(offset / time.Second)
	sign, abs := '+', secs
	if secs < 0 {
		sign, abs = '-', -secs
	}
	return time.FixedZone(fmt.Sprintf("%c%02d:%02d", sign, abs/3600, abs%3600/60), secs)
}
