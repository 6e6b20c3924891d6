// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package format implements the locale sensitive services used when
// templates are rendered: the formatting of numbers and dates, the parsing
// of dates, the case conversion and the comparison of strings, and the
// conversion of Markdown to HTML.
//
// Locales are represented with language tags of the package
// golang.org/x/text/language. The function ParseLocale accepts both the
// BCP 47 form, as "en-US", and the form with the underscore, as "en_US".
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// ErrInvalidLocale is returned by ParseLocale when the locale is not valid.
var ErrInvalidLocale = errors.New("invalid locale")

// ParseLocale parses a locale as "en_US" or "en-US".
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, ErrInvalidLocale
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("%w %q", ErrInvalidLocale, s)
	}
	return tag, nil
}

// LocaleString returns the locale tag in the form with the underscore, as
// "en_US".
func LocaleString(tag language.Tag) string {
	return strings.ReplaceAll(tag.String(), "-", "_")
}

// mondayLocales maps locales to the locales used to translate the names of
// months and days.
var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"de_at": monday.LocaleDeDE,
	"de_ch": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"fr_be": monday.LocaleFrFR,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"es_mx": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"it_ch": monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"cs":    monday.LocaleCsCZ,
	"da":    monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"sv":    monday.LocaleSvSE,
	"nb":    monday.LocaleNbNO,
	"nn":    monday.LocaleNnNO,
	"ja":    monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
	"el":    monday.LocaleElGR,
	"ro":    monday.LocaleRoRO,
	"hu":    monday.LocaleHuHU,
	"id":    monday.LocaleIdID,
	"th":    monday.LocaleThTH,
}

// mondayLocale returns the monday locale of tag, falling back to the
// language and then to English.
func mondayLocale(tag language.Tag) monday.Locale {
	key := strings.ToLower(LocaleString(tag))
	if loc, ok := mondayLocales[key]; ok {
		return loc
	}
	base, _ := tag.Base()
	if loc, ok := mondayLocales[base.String()]; ok {
		return loc
	}
	return monday.LocaleEnUS
}

// region returns the region of tag in lower case, or an empty string if it
// is not known.
func region(tag language.Tag) string {
	r, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	return strings.ToLower(r.String())
}

// lang returns the base language of tag.
func lang(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
