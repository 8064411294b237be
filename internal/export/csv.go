package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// Kind selects the value column label for an export.
type Kind string

const (
	KindApartments Kind = "apartments"
	KindSalaries   Kind = "salaries"
)

// Supported export locales. Russian is the dashboard's primary language;
// anything unmatched falls back to it.
var supportedLocales = []language.Tag{
	language.Russian,
	language.English,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var headers = map[language.Tag]map[Kind][2]string{
	language.Russian: {
		KindApartments: {"Дата", "Прогнозируемая цена"},
		KindSalaries:   {"Дата", "Прогнозируемая зарплата"},
	},
	language.English: {
		KindApartments: {"Date", "Forecast price"},
		KindSalaries:   {"Date", "Forecast salary"},
	},
}

const dateLayout = "2006-01-02"

// Options controls CSV rendering.
type Options struct {
	Kind   Kind
	Locale string
	// DecimalPlaces applied to forecast values. Currency exports round to
	// whole units.
	DecimalPlaces int32
}

// WriteCSV renders a forecast series as CSV with localized headers, dates
// in ISO order, one row per forecast point.
func WriteCSV(w io.Writer, series models.ForecastSeries, opts Options) error {
	tag := resolveLocale(opts.Locale)

	kind := opts.Kind
	if _, ok := headers[tag][kind]; !ok {
		kind = KindApartments
	}
	header := headers[tag][kind]

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{header[0], header[1]}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, point := range series {
		value := decimal.NewFromFloat(point.Value).Round(opts.DecimalPlaces)
		row := []string{
			point.Date.Format(dateLayout),
			value.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename builds a download name like forecast_apartments_20250630.csv.
func Filename(kind Kind, at time.Time) string {
	return fmt.Sprintf("forecast_%s_%s.csv", kind, at.Format("20060102"))
}

func resolveLocale(locale string) language.Tag {
	if locale == "" {
		return language.Russian
	}
	desired, err := language.Parse(locale)
	if err != nil {
		return language.Russian
	}
	_, index, _ := localeMatcher.Match(desired)
	return supportedLocales[index]
}
