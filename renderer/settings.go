// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/open2b/ftl/format"
)

// Settings are the settings of a rendering.
type Settings struct {

	// Locale is the locale, as "en_US" or "en-US".
	Locale string `yaml:"locale"`

	// TimeZone is the name of the time zone, as "Europe/Rome" or "UTC".
	TimeZone string `yaml:"time_zone"`

	// OutputFormat is the name of the output format, as "HTML".
	OutputFormat string `yaml:"output_format"`

	// AutoEscaping reports whether the interpolated values are escaped
	// according to the output format.
	AutoEscaping bool `yaml:"auto_escaping"`

	// NumberFormat is the format of the numbers, as accepted by
	// format.Number.
	NumberFormat string `yaml:"number_format"`

	// DateFormat, TimeFormat and DateTimeFormat are the formats of the
	// dates, as accepted by format.Date.
	DateFormat     string `yaml:"date_format"`
	TimeFormat     string `yaml:"time_format"`
	DateTimeFormat string `yaml:"datetime_format"`

	// BooleanFormat is the format of the booleans, as "yes,no" or "c". If
	// it is empty, the booleans can not be interpolated.
	BooleanFormat string `yaml:"boolean_format"`

	// StripWhitespace reports whether the superfluous white space of the
	// templates is stripped.
	StripWhitespace bool `yaml:"strip_whitespace"`

	// RightAdaptiveSlicing reports whether slicing with a range with a
	// length limit, as a..*n, clamps the end of the range to the length of
	// the sliced value.
	RightAdaptiveSlicing bool `yaml:"right_adaptive_slicing"`

	// LegacyStringSlicing reports whether slicing a string with a
	// decreasing inclusive range of two elements, as s[3..2], results in an
	// empty string instead of an error.
	LegacyStringSlicing bool `yaml:"legacy_string_slicing"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() *Settings {
	return &Settings{
		Locale:               "en_US",
		TimeZone:             "UTC",
		OutputFormat:         "plainText",
		AutoEscaping:         true,
		NumberFormat:         "number",
		DateFormat:           "medium",
		TimeFormat:           "medium",
		DateTimeFormat:       "medium_medium",
		StripWhitespace:      true,
		RightAdaptiveSlicing: true,
		LegacyStringSlicing:  true,
	}
}

// settingNames are the names of the settings that can be changed with the
// #setting directive.
var settingNames = map[string]string{
	"locale":          "locale",
	"time_zone":       "time_zone",
	"timeZone":        "time_zone",
	"number_format":   "number_format",
	"numberFormat":    "number_format",
	"date_format":     "date_format",
	"dateFormat":      "date_format",
	"time_format":     "time_format",
	"timeFormat":      "time_format",
	"datetime_format": "datetime_format",
	"datetimeFormat":  "datetime_format",
	"boolean_format":  "boolean_format",
	"booleanFormat":   "boolean_format",
}

// set sets the setting with the given name. It returns an error if the
// name is unknown or the value is not valid.
func (env *Environment) set(name, value string) error {
	switch settingNames[name] {
	case "locale":
		tag, err := format.ParseLocale(value)
		if err != nil {
			return err
		}
		env.settings.Locale = value
		env.locale = tag
		env.collator = nil
	case "time_zone":
		loc, err := time.LoadLocation(value)
		if err != nil {
			return fmt.Errorf("invalid time zone %q", value)
		}
		env.settings.TimeZone = value
		env.location = loc
	case "number_format":
		env.settings.NumberFormat = value
	case "date_format":
		env.settings.DateFormat = value
	case "time_format":
		env.settings.TimeFormat = value
	case "datetime_format":
		env.settings.DateTimeFormat = value
	case "boolean_format":
		if value != "" && value != "c" && strings.Count(value, ",") != 1 {
			return fmt.Errorf("the boolean format must be \"c\" or two comma separated values, as \"yes,no\", but it was %q", value)
		}
		env.settings.BooleanFormat = value
	default:
		names := make([]string, 0, len(settingNames))
		for n := range settingNames {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("Unknown setting name: %q. The supported names are: %s.", name, strings.Join(names, ", "))
	}
	return nil
}
