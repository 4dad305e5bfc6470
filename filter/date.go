package filter

import (
	"strconv"
	"time"
)

// DateRange is an optional year range. A bound <= 0 is unbounded.
type DateRange struct {
	From int
	To   int
}

// Active reports whether either bound is set.
func (r DateRange) Active() bool {
	return r.From > 0 || r.To > 0
}

// Valid reports whether the bounds are ordered. Unbounded sides always are.
func (r DateRange) Valid() bool {
	return r.From <= 0 || r.To <= 0 || r.From <= r.To
}

// FromUnix returns the first second of January 1 of From, UTC.
func (r DateRange) FromUnix() int64 {
	return time.Date(r.From, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
}

// ToUnix returns the last second of December 31 of To, UTC.
func (r DateRange) ToUnix() int64 {
	return time.Date(r.To, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
}

// Clauses returns the AND-ed date clauses, in order: the upper bound on
// dateMin, the lower bound OR-ed across dateMax and dateMin, and the
// known-date guard. Missing bounds omit their clause; an inactive range
// returns nil.
func (r DateRange) Clauses() []string {
	if !r.Active() {
		return nil
	}

	clauses := make([]string, 0, 3)
	if r.To > 0 {
		clauses = append(clauses, FieldDateMin+":<="+strconv.FormatInt(r.ToUnix(), 10))
	}
	if r.From > 0 {
		from := strconv.FormatInt(r.FromUnix(), 10)
		clauses = append(clauses, "("+FieldDateMax+":>="+from+" || "+FieldDateMin+":>="+from+")")
	}
	return append(clauses, knownDateGuard)
}

// Records with both dates zero carry no date information.
const knownDateGuard = "(" + FieldDateMin + ":>0 || " + FieldDateMax + ":>0)"

// Matches evaluates the range against a record whose dates are given as
// years, with 0 meaning unknown. It applies the same predicate as Clauses.
func (r DateRange) Matches(dateMin, dateMax int) bool {
	if !r.Active() {
		return true
	}
	if dateMin <= 0 && dateMax <= 0 {
		return false
	}
	if r.To > 0 && dateMin > r.To {
		return false
	}
	if r.From > 0 && dateMax < r.From && dateMin < r.From {
		return false
	}
	return true
}
