package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// DefaultMinDataPoints is the smallest series the preparer will accept.
const DefaultMinDataPoints = 6

// dateLayouts are tried in order when a provider delivers dates as strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// Preparer validates and cleans a raw provider series into a PreparedSeries
// suitable for modeling.
type Preparer struct {
	MinDataPoints int
}

// NewPreparer returns a preparer with the default minimum-length threshold.
func NewPreparer() *Preparer {
	return &Preparer{MinDataPoints: DefaultMinDataPoints}
}

// Prepare parses, deduplicates, sorts and interpolates a raw series.
//
// Rules, in order:
//   - every record's date field must parse (ErrInvalidDate otherwise)
//   - the value field must exist in at least one record (ErrMissingColumn)
//   - duplicate timestamps are dropped, first occurrence wins
//   - records are sorted ascending by timestamp
//   - fewer than MinDataPoints unique timestamps rejects the series
//     (ErrInsufficientData)
//   - interior missing values are linearly interpolated; leading and trailing
//     missing values are dropped, never extrapolated
func (p *Preparer) Prepare(raw models.RawSeries, valueField, dateField string) (*models.PreparedSeries, error) {
	minPoints := p.MinDataPoints
	if minPoints <= 0 {
		minPoints = DefaultMinDataPoints
	}

	type obs struct {
		date  time.Time
		value float64
		valid bool
	}

	hasColumn := false
	parsed := make([]obs, 0, len(raw.Records))
	seen := make(map[int64]bool, len(raw.Records))

	for i, rec := range raw.Records {
		rawDate, ok := rec[dateField]
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no %q field", ErrInvalidDate, i, dateField)
		}
		date, err := parseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidDate, i, err)
		}

		rawValue, ok := rec[valueField]
		if ok {
			hasColumn = true
		}
		value, valid := parseNumeric(rawValue)

		// Deduplicate by timestamp, first occurrence wins.
		key := date.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true

		parsed = append(parsed, obs{date: date, value: value, valid: valid})
	}

	if !hasColumn {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, valueField)
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].date.Before(parsed[j].date) })

	if len(parsed) < minPoints {
		return nil, fmt.Errorf("%w: %d points after deduplication, need at least %d",
			ErrInsufficientData, len(parsed), minPoints)
	}

	values := make([]float64, len(parsed))
	valid := make([]bool, len(parsed))
	for i, o := range parsed {
		values[i] = o.value
		valid[i] = o.valid
	}
	interpolateInterior(values, valid)

	// Edge policy: leading/trailing gaps are dropped rather than extrapolated.
	start, end := 0, len(valid)
	for start < end && !valid[start] {
		start++
	}
	for end > start && !valid[end-1] {
		end--
	}

	out := &models.PreparedSeries{
		Dates:     make([]time.Time, 0, end-start),
		Values:    make([]float64, 0, end-start),
		Frequency: raw.Frequency,
	}
	for i := start; i < end; i++ {
		out.Dates = append(out.Dates, parsed[i].date)
		out.Values = append(out.Values, values[i])
	}
	return out, nil
}

// parseDate accepts the date representations providers actually deliver:
// time.Time values or strings in one of the known layouts.
func parseDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case *time.Time:
		if d == nil {
			return time.Time{}, fmt.Errorf("nil date")
		}
		return *d, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", d)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

// parseNumeric converts a dynamically typed cell into a float64. Anything
// that is not a finite number counts as missing.
func parseNumeric(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case *float64:
		if n == nil {
			return 0, false
		}
		f = *n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// interpolateInterior fills gaps between two valid observations linearly by
// position. Gaps at the series ends are left untouched.
func interpolateInterior(values []float64, valid []bool) {
	prev := -1
	for i := range values {
		if !valid[i] {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (values[i] - values[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				values[j] = values[prev] + step*float64(j-prev)
				valid[j] = true
			}
		}
		prev = i
	}
}
