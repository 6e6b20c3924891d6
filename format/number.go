// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package format

import (
	"fmt"
	"strings"
	"sync"

	"github.com/open2b/ftl/model"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Number formats n with the given format and locale.
//
// The format can be:
//
//   - "" or "number", the number format of the locale with at most three
//     fraction digits
//   - "computer" or "c", the format used by programming languages
//   - "integer", the number format of the locale with no fraction digits
//   - "percent", the percent format of the locale
//   - "currency", the currency format of the locale
//   - a pattern, as "#,##0.00", where '0' is a required digit, '#' is an
//     optional digit, ',' enables the grouping and '.' separates the
//     fraction digits; the text before and after the pattern is written as
//     is and a final '%' multiplies the number by 100
//
// Infinities and NaN are formatted as "INF", "-INF" and "NaN" regardless of
// the format.
func Number(n model.Num, format string, tag language.Tag) (string, error) {
	if !n.IsFinite() {
		return n.String(), nil
	}
	switch format {
	case "computer", "c":
		return n.String(), nil
	case "", "number":
		return message.NewPrinter(tag).Sprint(number.Decimal(numberValue(n))), nil
	case "integer":
		return message.NewPrinter(tag).Sprint(number.Decimal(numberValue(n), number.MaxFractionDigits(0))), nil
	case "percent":
		return message.NewPrinter(tag).Sprint(number.Percent(numberValue(n))), nil
	case "currency":
		cur, conf := currency.FromTag(tag)
		if conf == language.No {
			return "", fmt.Errorf("no currency for locale %q", LocaleString(tag))
		}
		return message.NewPrinter(tag).Sprint(currency.Symbol(cur.Amount(n.Float64()))), nil
	}
	p, err := compileNumberPattern(format)
	if err != nil {
		return "", err
	}
	return p.format(n, tag), nil
}

// numberValue returns the value passed to the number formatters.
func numberValue(n model.Num) interface{} {
	if n.IsInteger() {
		if i, ok := n.Int(); ok {
			return i
		}
	}
	return n.Float64()
}

// numberPattern is a compiled number pattern.
type numberPattern struct {
	prefix, suffix string
	minInt         int
	minFrac        int
	maxFrac        int
	grouping       bool
	percent        bool
}

var numberPatterns sync.Map // pattern -> *numberPattern

// compileNumberPattern compiles a number pattern, caching the result.
func compileNumberPattern(s string) (*numberPattern, error) {
	if p, ok := numberPatterns.Load(s); ok {
		return p.(*numberPattern), nil
	}
	start := strings.IndexAny(s, "#0")
	if start == -1 {
		return nil, fmt.Errorf("invalid number format %q", s)
	}
	for start > 0 && (s[start-1] == ',' || s[start-1] == '.') {
		start--
	}
	end := start
	for end < len(s) && strings.IndexByte("#0,.", s[end]) >= 0 {
		end++
	}
	p := &numberPattern{prefix: s[:start], suffix: s[end:]}
	core := s[start:end]
	if strings.Count(core, ".") > 1 {
		return nil, fmt.Errorf("invalid number format %q: multiple decimal separators", s)
	}
	intPart, fracPart := core, ""
	if i := strings.IndexByte(core, '.'); i >= 0 {
		intPart, fracPart = core[:i], core[i+1:]
	}
	if strings.IndexByte(fracPart, ',') >= 0 {
		return nil, fmt.Errorf("invalid number format %q: grouping in the fraction", s)
	}
	p.grouping = strings.IndexByte(intPart, ',') >= 0
	p.minInt = strings.Count(intPart, "0")
	p.minFrac = strings.Count(fracPart, "0")
	p.maxFrac = len(fracPart)
	if strings.HasSuffix(p.suffix, "%") {
		p.percent = true
	}
	numberPatterns.Store(s, p)
	return p, nil
}

// format formats n.
func (p *numberPattern) format(n model.Num, tag language.Tag) string {
	if p.percent {
		n = n.Mul(model.IntNum(100))
	}
	opts := []number.Option{
		number.MinIntegerDigits(p.minInt),
		number.MinFractionDigits(p.minFrac),
		number.MaxFractionDigits(p.maxFrac),
	}
	if !p.grouping {
		opts = append(opts, number.NoSeparator())
	}
	return p.prefix + message.NewPrinter(tag).Sprint(number.Decimal(numberValue(n), opts...)) + p.suffix
}
