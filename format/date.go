// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/open2b/ftl/model"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// ErrUnknownDateType is returned when a date of unknown type is formatted
// with a format that depends on the type.
var ErrUnknownDateType = errors.New("can't format a date-like value whose type is unknown")

// Date formats the time t, of type typ, with the given format and locale.
// loc, if not nil, is the time zone in which the time is formatted.
//
// The format can be:
//
//   - "short", "medium", "long" or "full", the styles of the locale; for a
//     date-time, two styles can be joined with an underscore, as
//     "short_medium", to use different styles for the date and the time
//   - "iso", the ISO 8601 extended format
//   - "xs", the XML Schema format
//   - a pattern, as "yyyy-MM-dd HH:mm", where letters are fields and the
//     text between apostrophes is written as is
//
// The pattern letters are y (year), M (month), d (day), E (day of week),
// H (hour 0-23), h (hour 1-12), m (minute), s (second), S (fraction of
// second), a (AM/PM), z (zone name), Z (zone offset) and X (ISO 8601 zone).
func Date(t time.Time, typ model.DateType, format string, tag language.Tag, loc *time.Location) (string, error) {
	if loc != nil {
		t = t.In(loc)
	}
	switch format {
	case "iso":
		return ISO(t, typ, false)
	case "xs":
		return XS(t, typ)
	}
	if isStyle(format) {
		if typ == model.UnknownDateType {
			return "", ErrUnknownDateType
		}
		var err error
		format, err = stylePattern(format, typ, tag)
		if err != nil {
			return "", err
		}
	}
	p, err := compileDatePattern(format)
	if err != nil {
		return "", err
	}
	return p.format(t, mondayLocale(tag)), nil
}

// ISO formats t in the ISO 8601 extended format. If utc is true, t is
// converted to UTC.
func ISO(t time.Time, typ model.DateType, utc bool) (string, error) {
	if utc {
		t = t.UTC()
	}
	switch typ {
	case model.DateOnly:
		return t.Format("2006-01-02"), nil
	case model.TimeOnly:
		return t.Format(isoTimeLayout(t)), nil
	case model.DateTime:
		return t.Format("2006-01-02T" + isoTimeLayout(t)), nil
	}
	return "", ErrUnknownDateType
}

func isoTimeLayout(t time.Time) string {
	if t.Nanosecond() == 0 {
		return "15:04:05Z07:00"
	}
	return "15:04:05.999Z07:00"
}

// XS formats t in the XML Schema format.
func XS(t time.Time, typ model.DateType) (string, error) {
	switch typ {
	case model.DateOnly:
		return t.Format("2006-01-02Z07:00"), nil
	case model.TimeOnly:
		return t.Format("15:04:05.999999999Z07:00"), nil
	case model.DateTime:
		return t.Format("2006-01-02T15:04:05.999999999Z07:00"), nil
	}
	return "", ErrUnknownDateType
}

// ParseDate parses s as a date. If pattern is empty, the format is
// detected from s; if it is "iso", s must be in the ISO 8601 format;
// otherwise pattern is a pattern with the syntax accepted by Date.
func ParseDate(s, pattern string, tag language.Tag, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch pattern {
	case "":
		return dateparse.ParseIn(s, loc, dateparse.PreferMonthFirst(region(tag) == "us"))
	case "iso", "xs":
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02", "15:04:05Z07:00", "15:04:05"} {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%q is not in the ISO 8601 format", s)
	}
	if isStyle(pattern) {
		return time.Time{}, fmt.Errorf("can't parse with the %q style, use a pattern", pattern)
	}
	p, err := compileDatePattern(pattern)
	if err != nil {
		return time.Time{}, err
	}
	return monday.ParseInLocation(p.layout(), s, loc, mondayLocale(tag))
}

func isStyle(format string) bool {
	for _, s := range strings.SplitN(format, "_", 2) {
		switch s {
		case "short", "medium", "long", "full":
		default:
			return false
		}
	}
	return true
}

// stylePattern returns the pattern of the style format for a value of type
// typ in the locale tag.
func stylePattern(format string, typ model.DateType, tag language.Tag) (string, error) {
	dateStyle, timeStyle := format, format
	if i := strings.IndexByte(format, '_'); i > 0 {
		dateStyle, timeStyle = format[:i], format[i+1:]
	}
	switch typ {
	case model.DateOnly:
		return dateStylePattern(dateStyle, tag), nil
	case model.TimeOnly:
		return timeStylePattern(timeStyle, tag), nil
	case model.DateTime:
		return dateStylePattern(dateStyle, tag) + " " + timeStylePattern(timeStyle, tag), nil
	}
	return "", ErrUnknownDateType
}

func dateStylePattern(style string, tag language.Tag) string {
	l, r := lang(tag), region(tag)
	us := l == "en" && r != "gb" && r != "au" && r != "ie" && r != "nz"
	switch style {
	case "short":
		switch {
		case us:
			return "M/d/yy"
		case l == "de" || l == "ru" || l == "pl" || l == "cs" || l == "fi" || l == "nb" || l == "tr":
			return "dd.MM.yy"
		case l == "ja":
			return "yy/MM/dd"
		case l == "zh":
			return "yy/M/d"
		case l == "ko":
			return "yy. M. d."
		case l == "nl":
			return "dd-MM-yy"
		}
		return "dd/MM/yy"
	case "medium":
		switch {
		case us:
			return "MMM d, yyyy"
		case l == "de":
			return "d. MMM yyyy"
		case l == "ja" || l == "zh":
			return "yyyy年M月d日"
		case l == "ko":
			return "yyyy년 M월 d일"
		}
		return "d MMM yyyy"
	case "long":
		switch {
		case us:
			return "MMMM d, yyyy"
		case l == "de":
			return "d. MMMM yyyy"
		case l == "es" || l == "pt":
			return "d 'de' MMMM 'de' yyyy"
		case l == "ja" || l == "zh":
			return "yyyy年M月d日"
		case l == "ko":
			return "yyyy년 M월 d일"
		}
		return "d MMMM yyyy"
	}
	switch {
	case us:
		return "EEEE, MMMM d, yyyy"
	case l == "de":
		return "EEEE, d. MMMM yyyy"
	case l == "fr" || l == "it":
		return "EEEE d MMMM yyyy"
	case l == "es" || l == "pt":
		return "EEEE, d 'de' MMMM 'de' yyyy"
	case l == "ja" || l == "zh":
		return "yyyy年M月d日 EEEE"
	}
	return "EEEE, d MMMM yyyy"
}

func timeStylePattern(style string, tag language.Tag) string {
	l, r := lang(tag), region(tag)
	twelve := l == "en" && r != "gb" && r != "ie"
	switch style {
	case "short":
		if twelve {
			return "h:mm a"
		}
		return "HH:mm"
	case "medium":
		if twelve {
			return "h:mm:ss a"
		}
		return "HH:mm:ss"
	}
	if twelve {
		return "h:mm:ss a z"
	}
	return "HH:mm:ss z"
}

// datePattern is a compiled date pattern.
type datePattern []dateField

// dateField is a field of a date pattern. A field with letter 0 is a
// literal text.
type dateField struct {
	letter byte
	width  int
	text   string
}

var datePatterns sync.Map // pattern -> datePattern

// compileDatePattern compiles a date pattern, caching the result.
func compileDatePattern(s string) (datePattern, error) {
	if p, ok := datePatterns.Load(s); ok {
		return p.(datePattern), nil
	}
	var p datePattern
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			p = append(p, dateField{text: text.String()})
			text.Reset()
		}
	}
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'':
			if i+1 < len(s) && s[i+1] == '\'' {
				text.WriteByte('\'')
				i += 2
				continue
			}
			end := strings.IndexByte(s[i+1:], '\'')
			if end == -1 {
				return nil, fmt.Errorf("invalid date format %q: unterminated quoted text", s)
			}
			text.WriteString(s[i+1 : i+1+end])
			i += end + 2
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
			if strings.IndexByte("yMdEHhmsSazZX", c) == -1 {
				return nil, fmt.Errorf("invalid date format %q: unknown pattern letter %q", s, c)
			}
			j := i + 1
			for j < len(s) && s[j] == c {
				j++
			}
			flush()
			p = append(p, dateField{letter: c, width: j - i})
			i = j
		default:
			text.WriteByte(c)
			i++
		}
	}
	flush()
	datePatterns.Store(s, p)
	return p, nil
}

// format formats t.
func (p datePattern) format(t time.Time, loc monday.Locale) string {
	var b strings.Builder
	for _, f := range p {
		switch f.letter {
		case 0:
			b.WriteString(f.text)
		case 'y':
			if f.width == 2 {
				b.WriteString(t.Format("06"))
			} else {
				b.WriteString(pad(t.Year(), f.width))
			}
		case 'M':
			switch f.width {
			case 1, 2:
				b.WriteString(pad(int(t.Month()), f.width))
			case 3:
				b.WriteString(monday.Format(t, "Jan", loc))
			default:
				b.WriteString(monday.Format(t, "January", loc))
			}
		case 'd':
			b.WriteString(pad(t.Day(), f.width))
		case 'E':
			if f.width < 4 {
				b.WriteString(monday.Format(t, "Mon", loc))
			} else {
				b.WriteString(monday.Format(t, "Monday", loc))
			}
		case 'H':
			b.WriteString(pad(t.Hour(), f.width))
		case 'h':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			b.WriteString(pad(h, f.width))
		case 'm':
			b.WriteString(pad(t.Minute(), f.width))
		case 's':
			b.WriteString(pad(t.Second(), f.width))
		case 'S':
			ns := pad(t.Nanosecond(), 9)
			if f.width <= 9 {
				b.WriteString(ns[:f.width])
			} else {
				b.WriteString(ns + strings.Repeat("0", f.width-9))
			}
		case 'a':
			b.WriteString(monday.Format(t, "PM", loc))
		case 'z':
			b.WriteString(t.Format("MST"))
		case 'Z':
			b.WriteString(t.Format("-0700"))
		case 'X':
			switch f.width {
			case 1:
				b.WriteString(t.Format("Z07"))
			case 2:
				b.WriteString(t.Format("Z0700"))
			default:
				b.WriteString(t.Format("Z07:00"))
			}
		}
	}
	return b.String()
}

// layout returns the layout, as accepted by the time package, that
// corresponds to p.
func (p datePattern) layout() string {
	var b strings.Builder
	for _, f := range p {
		switch f.letter {
		case 0:
			b.WriteString(f.text)
		case 'y':
			if f.width == 2 {
				b.WriteString("06")
			} else {
				b.WriteString("2006")
			}
		case 'M':
			b.WriteString([]string{"1", "01", "Jan", "January"}[min(f.width, 4)-1])
		case 'd':
			b.WriteString([]string{"2", "02"}[min(f.width, 2)-1])
		case 'E':
			if f.width < 4 {
				b.WriteString("Mon")
			} else {
				b.WriteString("Monday")
			}
		case 'H':
			b.WriteString("15")
		case 'h':
			b.WriteString([]string{"3", "03"}[min(f.width, 2)-1])
		case 'm':
			b.WriteString([]string{"4", "04"}[min(f.width, 2)-1])
		case 's':
			b.WriteString([]string{"5", "05"}[min(f.width, 2)-1])
		case 'S':
			b.WriteString(strings.Repeat("0", f.width))
		case 'a':
			b.WriteString("PM")
		case 'z':
			b.WriteString("MST")
		case 'Z':
			b.WriteString("-0700")
		case 'X':
			b.WriteString("Z07:00")
		}
	}
	return b.String()
}

// pad formats n with at least width digits.
func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
