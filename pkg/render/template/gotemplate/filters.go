package gotemplate

import (
	"fmt"
	"math"
	"strings"

	"github.com/flosch/pongo2/v6"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

func registerDefaultFilters() {
	defaults := map[string]pongo2.FilterFunction{
		"trim":     filterTrim,
		"price":    filterPrice,
		"duration": filterDuration,
		"px":       filterPixels,
	}
	for name, fn := range defaults {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterPrice formats a number with two decimals and an optional ISO currency
// parameter: {{ product.price|price:product.currency }}.
func filterPrice(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if !in.IsNumber() {
		return pongo2.AsValue(in.String()), nil
	}
	amount := fmt.Sprintf("%.2f", in.Float())
	code := ""
	if param != nil && !param.IsNil() {
		code = strings.ToUpper(strings.TrimSpace(param.String()))
	}
	if code == "" {
		return pongo2.AsValue(amount), nil
	}
	if symbol, ok := currencySymbols[code]; ok {
		return pongo2.AsValue(symbol + amount), nil
	}
	return pongo2.AsValue(amount + " " + code), nil
}

// filterDuration renders whole seconds as "2d 03:04:05" or "03:04:05".
func filterDuration(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if !in.IsNumber() {
		return pongo2.AsValue(""), nil
	}
	total := int64(math.Max(0, in.Float()))
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	clock := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	if days > 0 {
		clock = fmt.Sprintf("%dd %s", days, clock)
	}
	return pongo2.AsValue(clock), nil
}

// filterPixels renders a number as a CSS pixel length.
func filterPixels(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if !in.IsNumber() {
		return pongo2.AsValue("0px"), nil
	}
	value := in.Float()
	if value == math.Trunc(value) {
		return pongo2.AsValue(fmt.Sprintf("%dpx", int64(value))), nil
	}
	return pongo2.AsValue(fmt.Sprintf("%.1fpx", value)), nil
}
