// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package renderer implements the evaluation of template trees.
//
// To render a tree, create an Environment with the data model, the writer
// where to write the result and the settings, and call its Process method:
//
//	env, err := renderer.NewEnvironment(root, w, nil)
//	if err != nil {
//		return err
//	}
//	err = env.Process(tree)
//
// An Environment renders only one tree and it is not safe for concurrent
// use. The same tree can be rendered concurrently by different
// environments.
//
// # Data model
//
// The data model is a model.Hash. Its values are the values of the package
// model: strings, numbers, booleans, date-like values, sequences, hashes,
// collections, markup values, directives and functions. Go values can be
// converted to model values with model.Wrap.
//
// # Variables
//
// An identifier is resolved looking, in order, in the local contexts (the
// loop variables of #list and the parameters and the local variables of a
// macro), in the current namespace, in the global variables and in the data
// model.
//
// # Built-ins
//
// The built-ins, as s?upper_case, are resolved by name. A BuiltIn node can
// be created with NewBuiltIn, that resolves the built-in immediately and
// returns a *ParseError if it does not exist. Each built-in has a
// snake_case and a camelCase name, as ?upper_case and ?upperCase.
//
// # Errors
//
// Process returns an *Error if the evaluation of the tree fails. The error
// message is rendered, with the template stack trace, only the first time
// it is requested.
package renderer
