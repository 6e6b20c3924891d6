// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher notifies the changes of a set of files.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	changed chan string
	errors  chan error
	done    chan struct{}

	sync.Mutex
	watched map[string]bool
}

// newFileWatcher returns a watcher that notifies on the Changed channel the
// name of the watched files that have been written.
func newFileWatcher() (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &fileWatcher{
		watcher: watcher,
		changed: make(chan string),
		errors:  make(chan error),
		done:    make(chan struct{}),
		watched: map[string]bool{},
	}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				name := filepath.Clean(event.Name)
				w.Lock()
				watched := w.watched[name]
				w.Unlock()
				if !watched {
					continue
				}
				select {
				case w.changed <- name:
				case <-w.done:
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case w.errors <- err:
				case <-w.done:
					return
				}
			}
		}
	}()
	return w, nil
}

// Changed returns the channel on which the changed files are notified.
func (w *fileWatcher) Changed() <-chan string {
	return w.changed
}

// Errors returns the channel on which the errors are notified.
func (w *fileWatcher) Errors() <-chan error {
	return w.errors
}

// Watch adds name to the watched files. The directory of name is watched
// so that files replaced by editors on save are still notified.
func (w *fileWatcher) Watch(name string) error {
	name = filepath.Clean(name)
	w.Lock()
	defer w.Unlock()
	if w.watched[name] {
		return nil
	}
	dir := filepath.Dir(name)
	if !w.watched[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.watched[dir] = true
	}
	w.watched[name] = true
	return nil
}

// Close stops the watcher.
func (w *fileWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// watch renders the document of opts and renders it again every time the
// document, the data model or the settings file changes. It returns only if
// the files can not be watched.
func watch(opts options) error {

	w, err := newFileWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, name := range []string{opts.document, opts.data, opts.settings} {
		if name == "" {
			continue
		}
		if err := w.Watch(name); err != nil {
			return err
		}
	}

	render := func() {
		if err := run(opts); err != nil {
			log.Printf("ftl: %s", err)
			return
		}
		log.Printf("ftl: rendered %s to %s", opts.document, opts.output)
	}

	render()
	for {
		select {
		case name := <-w.Changed():
			log.Printf("ftl: %s changed", name)
			render()
		case err := <-w.Errors():
			log.Printf("ftl: %s", err)
		}
	}
}
