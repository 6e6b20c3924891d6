// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package format

import (
	"errors"
	"testing"
	"time"

	"github.com/open2b/ftl/model"

	"golang.org/x/text/language"
)

var testTime = time.Date(2024, time.March, 5, 15, 4, 5, 0, time.UTC)

var dateTests = []struct {
	typ    model.DateType
	format string
	tag    language.Tag
	res    string
}{
	{model.DateTime, "yyyy-MM-dd HH:mm:ss", language.AmericanEnglish, "2024-03-05 15:04:05"},
	{model.DateTime, "d/M/yy", language.AmericanEnglish, "5/3/24"},
	{model.DateTime, "EEEE d MMMM yyyy", language.AmericanEnglish, "Tuesday 5 March 2024"},
	{model.DateTime, "EEE, MMM d", language.AmericanEnglish, "Tue, Mar 5"},
	{model.DateTime, "h:mm a", language.AmericanEnglish, "3:04 PM"},
	{model.DateTime, "'at' HH", language.AmericanEnglish, "at 15"},
	{model.DateTime, "HH''mm", language.AmericanEnglish, "15'04"},
	{model.DateTime, "HH:mm:ss.SSS", language.AmericanEnglish, "15:04:05.000"},
	{model.DateTime, "HH:mm X", language.AmericanEnglish, "15:04 Z"},
	{model.DateTime, "d MMMM", language.Italian, "5 marzo"},
	{model.DateOnly, "short", language.AmericanEnglish, "3/5/24"},
	{model.DateOnly, "medium", language.AmericanEnglish, "Mar 5, 2024"},
	{model.DateOnly, "long", language.AmericanEnglish, "March 5, 2024"},
	{model.TimeOnly, "short", language.AmericanEnglish, "3:04 PM"},
	{model.TimeOnly, "medium", language.BritishEnglish, "15:04:05"},
	{model.DateTime, "short_medium", language.AmericanEnglish, "3/5/24 3:04:05 PM"},
	{model.DateTime, "iso", language.AmericanEnglish, "2024-03-05T15:04:05Z"},
	{model.DateOnly, "iso", language.AmericanEnglish, "2024-03-05"},
	{model.TimeOnly, "iso", language.AmericanEnglish, "15:04:05Z"},
	{model.DateOnly, "xs", language.AmericanEnglish, "2024-03-05Z"},
}

func TestDate(t *testing.T) {
	for _, test := range dateTests {
		res, err := Date(testTime, test.typ, test.format, test.tag, nil)
		if err != nil {
			t.Errorf("format: %q, unexpected error %q", test.format, err)
			continue
		}
		if res != test.res {
			t.Errorf("format: %q, unexpected %q, expecting %q\n", test.format, res, test.res)
		}
	}
}

func TestDateLocation(t *testing.T) {
	loc := time.FixedZone("X", 2*60*60)
	res, err := Date(testTime, model.DateTime, "HH:mm Z", language.AmericanEnglish, loc)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	if res != "17:04 +0200" {
		t.Errorf("unexpected %q, expecting %q", res, "17:04 +0200")
	}
}

func TestDateErrors(t *testing.T) {
	_, err := Date(testTime, model.UnknownDateType, "short", language.AmericanEnglish, nil)
	if !errors.Is(err, ErrUnknownDateType) {
		t.Errorf("unexpected error %v, expecting ErrUnknownDateType", err)
	}
	_, err = Date(testTime, model.DateTime, "iso", language.AmericanEnglish, nil)
	if err != nil {
		t.Errorf("unexpected error %q", err)
	}
	_, err = Date(testTime, model.UnknownDateType, "iso", language.AmericanEnglish, nil)
	if !errors.Is(err, ErrUnknownDateType) {
		t.Errorf("unexpected error %v, expecting ErrUnknownDateType", err)
	}
	for _, format := range []string{"yyyy-'MM", "yyyy-QQ"} {
		if _, err := Date(testTime, model.DateTime, format, language.AmericanEnglish, nil); err == nil {
			t.Errorf("format: %q, expecting error, got no error", format)
		}
	}
}

func TestISOUTC(t *testing.T) {
	d := time.Date(2024, time.March, 5, 1, 0, 0, 0, time.FixedZone("X", 2*60*60))
	res, err := ISO(d, model.DateTime, true)
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	if res != "2024-03-04T23:00:00Z" {
		t.Errorf("unexpected %q, expecting %q", res, "2024-03-04T23:00:00Z")
	}
}

var parseDateTests = []struct {
	src     string
	pattern string
	res     time.Time
}{
	{"2024-03-05", "yyyy-MM-dd", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
	{"05/03/2024 15:04", "dd/MM/yyyy HH:mm", time.Date(2024, time.March, 5, 15, 4, 0, 0, time.UTC)},
	{"2024-03-05T15:04:05Z", "iso", testTime},
	{"2024-03-05", "iso", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
	{"2024-03-05 15:04:05", "", testTime},
}

func TestParseDate(t *testing.T) {
	for _, test := range parseDateTests {
		res, err := ParseDate(test.src, test.pattern, language.AmericanEnglish, time.UTC)
		if err != nil {
			t.Errorf("source: %q, unexpected error %q", test.src, err)
			continue
		}
		if !res.Equal(test.res) {
			t.Errorf("source: %q, unexpected %s, expecting %s\n", test.src, res, test.res)
		}
	}
}

func TestParseDateErrors(t *testing.T) {
	tests := []struct{ src, pattern string }{
		{"5 March", "yyyy-MM-dd"},
		{"2024-03-05", "short"},
		{"March", "iso"},
	}
	for _, test := range tests {
		if _, err := ParseDate(test.src, test.pattern, language.AmericanEnglish, time.UTC); err == nil {
			t.Errorf("source: %q, pattern: %q, expecting error, got no error", test.src, test.pattern)
		}
	}
}
