package instant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// unit tables; each maps a canonical unit token to its multiplier
// against the category's base unit.
var (
	lengthUnits = map[string]float64{
		"km": 1000, "m": 1, "cm": 0.01, "mm": 0.001,
		"mi": 1609.344, "ft": 0.3048, "in": 0.0254,
	}
	massUnits = map[string]float64{
		"kg": 1000, "g": 1, "lbs": 453.592, "oz": 28.3495,
	}
	volumeUnits = map[string]float64{
		"l": 1, "ml": 0.001, "gal": 3.78541, "oz": 0.0295735,
	}
	speedUnits = map[string]float64{
		"m/s": 1, "km/h": 1.0 / 3.6, "mph": 0.44704,
	}
)

var unitCategories = []map[string]float64{lengthUnits, massUnits, volumeUnits, speedUnits}

var unitAliases = map[string]string{
	"miles": "mi", "meters": "m", "feet": "ft", "inches": "in",
	"pounds": "lbs", "grams": "g", "ounces": "oz", "liters": "l", "gallons": "gal",
	"celsius": "c", "°c": "c", "fahrenheit": "f", "°f": "f", "kelvin": "k",
}

var temperatureUnits = map[string]bool{"c": true, "f": true, "k": true}

func canonicalUnit(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := unitAliases[u]; ok {
		return alias
	}

	return u
}

var unitConversionQueryPattern = regexp.MustCompile(
	`(?i)^(-?\d+(?:\.\d+)?)\s*([a-z°/]+)\s*(?:to|in|into|as)\s*([a-z°/]+)$`,
)

// ErrCrossCategoryConversion is returned when the two units belong to
// different physical quantities.
var ErrCrossCategoryConversion = fmt.Errorf("cannot convert between different unit categories")

// EvaluateUnitConversion parses "amount unit1 to unit2" and converts.
func EvaluateUnitConversion(query string) (Answer, error) {
	m := unitConversionQueryPattern.FindStringSubmatch(strings.TrimSpace(query))
	if m == nil {
		return Answer{}, fmt.Errorf("%q does not match a unit conversion query", query)
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Answer{}, fmt.Errorf("parse amount: %w", err)
	}

	from := canonicalUnit(m[2])
	to := canonicalUnit(m[3])

	if temperatureUnits[from] && temperatureUnits[to] {
		result := convertTemperature(amount, from, to)

		return Answer{Kind: KindUnitConversion, Value: formatNumber(round(result, 5))}, nil
	}

	for _, table := range unitCategories {
		fromFactor, fromOK := table[from]
		toFactor, toOK := table[to]

		if fromOK && toOK {
			base := amount * fromFactor
			result := base / toFactor

			return Answer{Kind: KindUnitConversion, Value: formatNumber(round(result, 5))}, nil
		}
	}

	return Answer{}, ErrCrossCategoryConversion
}

// convertTemperature pivots through Celsius.
func convertTemperature(amount float64, from, to string) float64 {
	var celsius float64

	switch from {
	case "c":
		celsius = amount
	case "f":
		celsius = (amount - 32) * 5 / 9
	case "k":
		celsius = amount - 273.15
	}

	switch to {
	case "c":
		return celsius
	case "f":
		return celsius*9/5 + 32
	case "k":
		return celsius + 273.15
	}

	return celsius
}

func round(v float64, decimals int) float64 {
	shift := 1.0

	for i := 0; i < decimals; i++ {
		shift *= 10
	}

	return float64(int64(v*shift+sign(v)*0.5)) / shift
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}

	return 1
}
