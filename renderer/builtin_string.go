// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/format"
	"github.com/open2b/ftl/model"
)

// stringBuiltIns are the built-ins of the strings.
var stringBuiltIns = map[string]builtInFunc{
	"upper_case":         stringFunc(func(env *Environment, s string) string { return format.Upper(s, env.locale) }),
	"lower_case":         stringFunc(func(env *Environment, s string) string { return format.Lower(s, env.locale) }),
	"capitalize":         stringFunc(func(env *Environment, s string) string { return format.Capitalize(s, env.locale) }),
	"cap_first":          stringFunc(func(_ *Environment, s string) string { return format.CapFirst(s) }),
	"uncap_first":        stringFunc(func(_ *Environment, s string) string { return format.UncapFirst(s) }),
	"trim":               stringFunc(func(_ *Environment, s string) string { return strings.TrimSpace(s) }),
	"chop_linebreak":     stringFunc(func(_ *Environment, s string) string { return chopLinebreak(s) }),
	"html":               stringFunc(func(_ *Environment, s string) string { return htmlEscape(s) }),
	"xhtml":              stringFunc(func(_ *Environment, s string) string { return htmlEscape(s) }),
	"xml":                stringFunc(func(_ *Environment, s string) string { return xmlEscape(s) }),
	"rtf":                stringFunc(func(_ *Environment, s string) string { return rtfEscape(s) }),
	"js_string":          stringFunc(func(_ *Environment, s string) string { return jsStringEscape(s) }),
	"json_string":        stringFunc(func(_ *Environment, s string) string { return jsonStringEscape(s) }),
	"url_path":           stringFunc(func(_ *Environment, s string) string { return pathEscape(s) }),
	"length":             builtInLength,
	"word_list":          builtInWordList,
	"url":                builtInURL,
	"number":             builtInNumber,
	"boolean":            builtInBoolean,
	"markdown":           builtInMarkdown,
	"contains":           stringPredicate(strings.Contains),
	"starts_with":        stringPredicate(strings.HasPrefix),
	"ends_with":          stringPredicate(strings.HasSuffix),
	"ensure_starts_with": builtInEnsureStartsWith,
	"ensure_ends_with":   builtInEnsureEndsWith,
	"remove_beginning":   builtInRemoveBeginning,
	"remove_ending":      builtInRemoveEnding,
	"index_of":           builtInIndexOf,
	"last_index_of":      builtInLastIndexOf,
	"replace":            builtInReplace,
	"split":              builtInSplit,
	"left_pad":           padFunc(true),
	"right_pad":          padFunc(false),
	"keep_before":        keepFunc(false, false),
	"keep_before_last":   keepFunc(false, true),
	"keep_after":         keepFunc(true, false),
	"keep_after_last":    keepFunc(true, true),
	"matches":            builtInMatches,
	"groups":             builtInGroups,
	"truncate":           truncateFunc(truncateAuto),
	"truncate_w":         truncateFunc(truncateWords),
	"truncate_c":         truncateFunc(truncateChars),
}

// stringFunc returns a built-in that transforms a string with f.
func stringFunc(f func(env *Environment, s string) string) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		return model.SimpleString(f(env, env.targetString(n)))
	}
}

// stringPredicate returns a built-in method that tests the target and its
// string argument with f.
func stringPredicate(f func(s, t string) bool) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		s := env.targetString(n)
		return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
			return model.Bool(f(s, args.string(0)))
		})
	}
}

// chopLinebreak removes a line break at the end of s.
func chopLinebreak(s string) string {
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "\n"), strings.HasSuffix(s, "\r"):
		return s[:len(s)-1]
	}
	return s
}

func builtInLength(env *Environment, n *ast.BuiltIn) model.Value {
	return model.IntNum(int64(utf8.RuneCountInString(env.targetString(n))))
}

func builtInWordList(env *Environment, n *ast.BuiltIn) model.Value {
	words := strings.Fields(env.targetString(n))
	seq := make(model.SimpleSequence, len(words))
	for i, w := range words {
		seq[i] = model.SimpleString(w)
	}
	return seq
}

// builtInURL implements ?url. The optional argument is the charset, that
// can only be UTF-8.
func builtInURL(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	escaped := queryEscape(s)
	m := env.newMethod(n, 0, 1, func(args methodArgs) model.Value {
		if args.len() == 1 {
			if cs := strings.ToLower(args.string(0)); cs != "utf-8" && cs != "utf8" {
				args.fail(0, "is an unsupported charset: %q. Only UTF-8 is supported.", cs)
			}
		}
		return model.SimpleString(escaped)
	})
	return dualValue{method: m, s: escaped}
}

// builtInNumber implements ?number, that parses a string as a number.
func builtInNumber(env *Environment, n *ast.BuiltIn) model.Value {
	v := env.evalValue(n.Target)
	if num, ok := v.(model.Number); ok {
		return env.asNum(n.Target, num)
	}
	s := env.toString(n.Target, v)
	num, err := model.ParseNum(s)
	if err != nil {
		panic(env.newError(n.Target, "The string doesn't look like a number: ", quoted{s}).withCause(err))
	}
	return num
}

// builtInBoolean implements ?boolean, that parses a string as a boolean.
// Besides "true" and "false", the values of the boolean format are
// accepted.
func builtInBoolean(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	switch s {
	case "true":
		return model.True
	case "false":
		return model.False
	}
	if f := env.settings.BooleanFormat; f != "" && f != "c" {
		if t, ff, ok := strings.Cut(f, ","); ok {
			switch s {
			case t:
				return model.True
			case ff:
				return model.False
			}
		}
	}
	panic(env.newError(n.Target, "Can't convert this string to boolean: ", quoted{s}))
}

// builtInMarkdown implements ?markdown, that converts Markdown text to
// HTML markup.
func builtInMarkdown(env *Environment, n *ast.BuiltIn) model.Value {
	html, err := format.Markdown(env.targetString(n))
	if err != nil {
		panic(env.newError(n, "Failed to convert the Markdown text: ", err.Error()).withCause(err))
	}
	return model.SimpleMarkup{Format: "HTML", Text: html}
}

func builtInEnsureStartsWith(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		prefix := args.string(0)
		if strings.HasPrefix(s, prefix) {
			return model.SimpleString(s)
		}
		return model.SimpleString(prefix + s)
	})
}

func builtInEnsureEndsWith(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		suffix := args.string(0)
		if strings.HasSuffix(s, suffix) {
			return model.SimpleString(s)
		}
		return model.SimpleString(s + suffix)
	})
}

func builtInRemoveBeginning(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		return model.SimpleString(strings.TrimPrefix(s, args.string(0)))
	})
}

func builtInRemoveEnding(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	return env.newMethod(n, 1, 1, func(args methodArgs) model.Value {
		return model.SimpleString(strings.TrimSuffix(s, args.string(0)))
	})
}

// builtInIndexOf implements ?index_of(substring[, start]). The indexes
// are in characters.
func builtInIndexOf(env *Environment, n *ast.BuiltIn) model.Value {
	s := []rune(env.targetString(n))
	return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
		sub := []rune(args.string(0))
		start := 0
		if args.len() == 2 {
			start = max(args.int(1), 0)
		}
		for i := start; i+len(sub) <= len(s); i++ {
			if runesEqual(s[i:i+len(sub)], sub) {
				return model.IntNum(int64(i))
			}
		}
		return model.IntNum(-1)
	})
}

// builtInLastIndexOf implements ?last_index_of(substring[, start]).
func builtInLastIndexOf(env *Environment, n *ast.BuiltIn) model.Value {
	s := []rune(env.targetString(n))
	return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
		sub := []rune(args.string(0))
		start := len(s) - len(sub)
		if args.len() == 2 {
			start = min(args.int(1), start)
		}
		for i := start; i >= 0; i-- {
			if runesEqual(s[i:i+len(sub)], sub) {
				return model.IntNum(int64(i))
			}
		}
		return model.IntNum(-1)
	})
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// compileSearch compiles the search string s of a string built-in
// according to flags. If flags do not require a regular expression, s is
// quoted.
func compileSearch(args methodArgs, i int, s string, flags stringFlags) *regexp.Regexp {
	if !flags.regexp {
		s = regexp.QuoteMeta(s)
	}
	var mods string
	if flags.caseInsensitive {
		mods += "i"
	}
	if flags.multiline {
		mods += "m"
	}
	if flags.dotAll {
		mods += "s"
	}
	if mods != "" {
		s = "(?" + mods + ")" + s
	}
	re, err := regexp.Compile(s)
	if err != nil {
		args.fail(i, "is not a valid regular expression: %s", err)
	}
	return re
}

// builtInReplace implements ?replace(search, replacement[, flags]).
func builtInReplace(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	return env.newMethod(n, 2, 3, func(args methodArgs) model.Value {
		search, replacement := args.string(0), args.string(1)
		flags := args.flags(2)
		if !flags.regexp && !flags.caseInsensitive {
			if flags.first {
				return model.SimpleString(strings.Replace(s, search, replacement, 1))
			}
			return model.SimpleString(strings.ReplaceAll(s, search, replacement))
		}
		re := compileSearch(args, 0, search, flags)
		if !flags.first {
			if flags.regexp {
				return model.SimpleString(re.ReplaceAllString(s, replacement))
			}
			return model.SimpleString(re.ReplaceAllLiteralString(s, replacement))
		}
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			return model.SimpleString(s)
		}
		var b []byte
		b = append(b, s[:loc[0]]...)
		if flags.regexp {
			b = re.ExpandString(b, replacement, s, loc)
		} else {
			b = append(b, replacement...)
		}
		b = append(b, s[loc[1]:]...)
		return model.SimpleString(b)
	})
}

// builtInSplit implements ?split(separator[, flags]).
func builtInSplit(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
		sep := args.string(0)
		flags := args.flags(1)
		var parts []string
		if !flags.regexp && !flags.caseInsensitive {
			parts = strings.Split(s, sep)
		} else {
			parts = compileSearch(args, 0, sep, flags).Split(s, -1)
		}
		seq := make(model.SimpleSequence, len(parts))
		for i, p := range parts {
			seq[i] = model.SimpleString(p)
		}
		return seq
	})
}

// padFunc returns the ?left_pad or the ?right_pad built-in. The padding
// string is repeated aligned to the beginning of the result.
func padFunc(left bool) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		s := []rune(env.targetString(n))
		return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
			width := args.int(0)
			filling := []rune(args.optString(1, " "))
			if len(filling) == 0 {
				args.fail(1, "can't be a 0-length string.")
			}
			if width <= len(s) {
				return model.SimpleString(string(s))
			}
			res := make([]rune, 0, width)
			if left {
				for i := 0; i < width-len(s); i++ {
					res = append(res, filling[i%len(filling)])
				}
				res = append(res, s...)
			} else {
				res = append(res, s...)
				for i := len(s); i < width; i++ {
					res = append(res, filling[i%len(filling)])
				}
			}
			return model.SimpleString(string(res))
		})
	}
}

// keepFunc returns one of the ?keep_before, ?keep_before_last,
// ?keep_after and ?keep_after_last built-ins.
func keepFunc(after, last bool) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		s := env.targetString(n)
		return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
			re := compileSearch(args, 0, args.string(0), args.flags(1))
			var loc []int
			if last {
				if all := re.FindAllStringIndex(s, -1); all != nil {
					loc = all[len(all)-1]
				}
			} else {
				loc = re.FindStringIndex(s)
			}
			if loc == nil {
				if after {
					return model.SimpleString("")
				}
				return model.SimpleString(s)
			}
			if after {
				return model.SimpleString(s[loc[1]:])
			}
			return model.SimpleString(s[:loc[0]])
		})
	}
}

// builtInMatches implements ?matches(regexp[, flags]). The result is a
// boolean, true if the whole string matches, and a sequence of the matches.
func builtInMatches(env *Environment, n *ast.BuiltIn) model.Value {
	s := env.targetString(n)
	return env.newMethod(n, 1, 2, func(args methodArgs) model.Value {
		flags := args.flags(1)
		if flags.first {
			args.fail(1, "contains the flag \"f\", that is not supported by ?matches.")
		}
		flags.regexp = true
		re := compileSearch(args, 0, args.string(0), flags)
		whole := regexp.MustCompile(`\A(?:` + re.String() + `)\z`)
		m := &regexpMatches{}
		if groups := whole.FindStringSubmatch(s); groups != nil {
			m.whole = true
			m.groups = stringSequence(groups)
		}
		for _, match := range re.FindAllStringSubmatch(s, -1) {
			m.matches = append(m.matches, regexpMatch{s: match[0], groups: stringSequence(match)})
		}
		return m
	})
}

// builtInGroups implements ?groups, that returns the groups of a match
// returned by ?matches. The first group is the whole match.
func builtInGroups(env *Environment, n *ast.BuiltIn) model.Value {
	v := env.evalValue(n.Target)
	g, ok := v.(matchGroups)
	if !ok {
		panic(env.newUnexpectedTypeError(n.Target, v, "regular expression matching result"))
	}
	return g.matchGroups()
}

// matchGroups is implemented by the results of ?matches.
type matchGroups interface {
	matchGroups() model.SimpleSequence
}

// regexpMatches is the value returned by ?matches.
type regexpMatches struct {
	whole   bool
	groups  model.SimpleSequence // groups of the whole string match
	matches []regexpMatch
}

func (m *regexpMatches) AsBoolean() (bool, error) { return m.whole, nil }

func (m *regexpMatches) Len() (int, error) { return len(m.matches), nil }

func (m *regexpMatches) Index(i int) (model.Value, error) {
	if i < 0 || i >= len(m.matches) {
		return nil, nil
	}
	return m.matches[i], nil
}

func (m *regexpMatches) matchGroups() model.SimpleSequence {
	if m.groups == nil {
		return model.SimpleSequence{}
	}
	return m.groups
}

// regexpMatch is a match of a regular expression.
type regexpMatch struct {
	s      string
	groups model.SimpleSequence
}

func (m regexpMatch) AsString() (string, error) { return m.s, nil }

func (m regexpMatch) matchGroups() model.SimpleSequence { return m.groups }

func stringSequence(s []string) model.SimpleSequence {
	seq := make(model.SimpleSequence, len(s))
	for i, v := range s {
		seq[i] = model.SimpleString(v)
	}
	return seq
}

// truncateFunc returns one of the ?truncate, ?truncate_w and ?truncate_c
// built-ins, called as s?truncate(maxLength[, terminator[, terminatorLength]]).
func truncateFunc(mode truncateMode) builtInFunc {
	return func(env *Environment, n *ast.BuiltIn) model.Value {
		s := []rune(env.targetString(n))
		return env.newMethod(n, 1, 3, func(args methodArgs) model.Value {
			maxLength := args.int(0)
			terminator := []rune(args.optString(1, truncateTerminator))
			terminatorLength := len(terminator)
			if args.len() == 3 {
				terminatorLength = args.int(2)
				if terminatorLength < 0 {
					args.fail(2, "can't be negative.")
				}
			}
			if len(s) > maxLength && maxLength < 0 {
				args.fail(0, "can't be negative.")
			}
			return model.SimpleString(truncate(s, maxLength, terminator, terminatorLength, mode))
		})
	}
}
