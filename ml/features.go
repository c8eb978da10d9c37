package ml

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Raw dataset column names.
const (
	ColOperator     = "OPERA"
	ColFlightType   = "TIPOVUELO"
	ColMonth        = "MES"
	ColScheduledAt  = "Fecha-I"
	ColOperatedAt   = "Fecha-O"
	DefaultTarget   = "delay"
	timestampLayout = "2006-01-02 15:04:05"
)

// delayThresholdMinutes is the strict cutoff above which a flight counts as
// delayed. Exactly 15 minutes late is still on time.
const delayThresholdMinutes = 15.0

// monthSentinel replaces unparseable month values so they match none of the
// known one-hot columns instead of failing the whole batch.
const monthSentinel = -1

// FeatureColumns returns the fixed feature schema. Every encoded row has
// exactly these columns in exactly this order; the names are part of the
// model contract and must never be reordered or renamed.
func FeatureColumns() []string {
	return []string{
		"OPERA_Latin American Wings",
		"OPERA_Grupo LATAM",
		"OPERA_Sky Airline",
		"OPERA_Copa Air",
		"TIPOVUELO_I",
		"MES_4",
		"MES_7",
		"MES_10",
		"MES_11",
		"MES_12",
	}
}

var featureIndex = func() map[string]int {
	index := make(map[string]int)
	for i, name := range FeatureColumns() {
		index[name] = i
	}
	return index
}()

// EncodeFeatures one-hot encodes OPERA, TIPOVUELO and MES against the fixed
// schema. Categorical values outside the schema contribute all-zero bits for
// their attribute; a month that does not parse as an integer becomes a
// sentinel that matches no column. The result has one row per input row, each
// of width len(FeatureColumns()).
func EncodeFeatures(f *Frame) ([][]float64, error) {
	var missing []string
	for _, col := range []string{ColOperator, ColFlightType, ColMonth} {
		if !f.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	operators, _ := f.Column(ColOperator)
	flightTypes, _ := f.Column(ColFlightType)
	months, _ := f.Column(ColMonth)

	width := len(FeatureColumns())
	features := make([][]float64, f.Len())
	for i := range features {
		row := make([]float64, width)
		setBit(row, "OPERA_"+operators[i])
		setBit(row, "TIPOVUELO_"+flightTypes[i])
		setBit(row, "MES_"+strconv.Itoa(parseMonth(months[i])))
		features[i] = row
	}
	return features, nil
}

// EnsureLabel returns one binary label per row. If the target column is
// present its values are parsed numerically and truncated to int. Otherwise
// the label is derived from the scheduled/operated timestamp pair: 1 when the
// flight left more than 15 minutes late, else 0. A row whose timestamps do
// not parse derives 0, never an error; the upstream data treats an
// indeterminate difference as not delayed and that behavior is contractual.
func EnsureLabel(f *Frame, target string) ([]int, error) {
	if target == "" {
		target = DefaultTarget
	}
	if f.Has(target) {
		values, _ := f.Column(target)
		labels := make([]int, len(values))
		for i, v := range values {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: target %q is not numeric: %q", i, target, v)
			}
			labels[i] = int(parsed)
		}
		return labels, nil
	}

	var missing []string
	for _, col := range []string{ColScheduledAt, ColOperatedAt} {
		if !f.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	scheduled, _ := f.Column(ColScheduledAt)
	operated, _ := f.Column(ColOperatedAt)
	labels := make([]int, f.Len())
	for i := range labels {
		labels[i] = delayLabel(scheduled[i], operated[i])
	}
	return labels, nil
}

func delayLabel(scheduled, operated string) int {
	si, err := time.Parse(timestampLayout, strings.TrimSpace(scheduled))
	if err != nil {
		return 0
	}
	so, err := time.Parse(timestampLayout, strings.TrimSpace(operated))
	if err != nil {
		return 0
	}
	if so.Sub(si).Minutes() > delayThresholdMinutes {
		return 1
	}
	return 0
}

func parseMonth(raw string) int {
	s := strings.TrimSpace(raw)
	if month, err := strconv.Atoi(s); err == nil {
		return month
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return monthSentinel
}

func setBit(row []float64, name string) {
	if idx, ok := featureIndex[name]; ok {
		row[idx] = 1
	}
}
