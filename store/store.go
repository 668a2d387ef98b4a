// /home/krylon/go/src/github.com/blicero/hermes/store/store.go
// -*- mode: go; coding: utf-8; -*-
// Created on 08. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-14 16:23:37 krylon>

// Package store implements the persistence layer of the application.
// It keeps the canonical in-memory copies of the Rule and Task
// collections, is the sole writer of their on-disk snapshots
// (notifications.json and todos.json), and manages the directory of
// user-supplied notification icons.
package store

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/blicero/hermes/common"
	"github.com/blicero/hermes/logdomain"
	"github.com/blicero/hermes/objects"
	"github.com/pquerna/ffjson/ffjson"
)

// Store is the owner of the persisted record collections. All
// mutations go through a single replace-and-persist entry point per
// collection, so memory and disk can only diverge when a write fails
// (which is logged, with memory remaining authoritative).
type Store struct {
	log   *log.Logger
	lock  sync.RWMutex
	rules []objects.Rule
	tasks []objects.Task
}

// Open creates a Store, making sure the application directories
// exist, and loads both record collections. A missing or unreadable
// notifications.json is replaced by the default seed, a missing or
// unreadable todos.json by an empty collection. Open itself only
// fails if the environment cannot be set up at all.
func Open() (*Store, error) {
	var (
		err error
		s   = new(Store)
	)

	if s.log, err = common.GetLogger(logdomain.Store); err != nil {
		return nil, err
	} else if err = common.InitApp(); err != nil {
		s.log.Printf("[ERROR] Cannot initialize application environment: %s\n",
			err.Error())
		return nil, err
	}

	s.loadRules()
	s.loadTasks()

	return s, nil
} // func Open() (*Store, error)

// Rules returns a copy of the current Rule collection.
func (s *Store) Rules() []objects.Rule {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var rules = make([]objects.Rule, len(s.rules))
	copy(rules, s.rules)

	return rules
} // func (s *Store) Rules() []objects.Rule

// ReplaceRules installs the given collection as the new canonical
// Rule set and persists it. A failure to persist is logged, but the
// in-memory collection is not rolled back.
func (s *Store) ReplaceRules(rules []objects.Rule) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.rules = make([]objects.Rule, len(rules))
	copy(s.rules, rules)

	var err error

	if err = writeSnapshot(common.RulePath, s.rules); err != nil {
		s.log.Printf("[ERROR] Cannot save Rules to %s: %s\n",
			common.RulePath,
			err.Error())
	}
} // func (s *Store) ReplaceRules(rules []objects.Rule)

// Tasks returns a copy of the current Task collection.
func (s *Store) Tasks() []objects.Task {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var tasks = make([]objects.Task, len(s.tasks))
	copy(tasks, s.tasks)

	return tasks
} // func (s *Store) Tasks() []objects.Task

// ReplaceTasks installs the given collection as the new canonical
// Task list and persists it, with the same contract as ReplaceRules.
func (s *Store) ReplaceTasks(tasks []objects.Task) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.tasks = make([]objects.Task, len(tasks))
	copy(s.tasks, tasks)

	var err error

	if err = writeSnapshot(common.TaskPath, s.tasks); err != nil {
		s.log.Printf("[ERROR] Cannot save Tasks to %s: %s\n",
			common.TaskPath,
			err.Error())
	}
} // func (s *Store) ReplaceTasks(tasks []objects.Task)

func (s *Store) loadRules() {
	var (
		err error
		buf []byte
	)

	if buf, err = os.ReadFile(common.RulePath); err != nil {
		s.log.Printf("[INFO] Cannot read %s (%s), seeding default Rules\n",
			common.RulePath,
			err.Error())
		s.seedRules()
		return
	} else if err = ffjson.Unmarshal(buf, &s.rules); err != nil {
		s.log.Printf("[ERROR] Cannot parse %s (%s), seeding default Rules\n",
			common.RulePath,
			err.Error())
		s.seedRules()
		return
	}

	// An explicitly saved empty collection stays empty, only a
	// missing or broken file gets the seed.
	if s.rules == nil {
		s.rules = make([]objects.Rule, 0)
	}
} // func (s *Store) loadRules()

func (s *Store) seedRules() {
	s.rules = objects.DefaultRules()

	var err error

	if err = writeSnapshot(common.RulePath, s.rules); err != nil {
		s.log.Printf("[ERROR] Cannot persist default Rules to %s: %s\n",
			common.RulePath,
			err.Error())
	}
} // func (s *Store) seedRules()

func (s *Store) loadTasks() {
	var (
		err error
		buf []byte
	)

	if buf, err = os.ReadFile(common.TaskPath); err != nil {
		s.log.Printf("[INFO] Cannot read %s (%s), starting with an empty Task list\n",
			common.TaskPath,
			err.Error())
		s.tasks = make([]objects.Task, 0)
		return
	} else if err = ffjson.Unmarshal(buf, &s.tasks); err != nil {
		s.log.Printf("[ERROR] Cannot parse %s (%s), starting with an empty Task list\n",
			common.TaskPath,
			err.Error())
		s.tasks = make([]objects.Task, 0)
		return
	}

	if s.tasks == nil {
		s.tasks = make([]objects.Task, 0)
	}
} // func (s *Store) loadTasks()

// writeSnapshot serializes the given collection and replaces the
// snapshot at path with it. The data is written to a uniquely named
// temporary file first and renamed into place, so a reader never sees
// a partially written snapshot.
func writeSnapshot(path string, records interface{}) error {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(records); err != nil {
		return fmt.Errorf("Cannot serialize records for %s: %s",
			path,
			err.Error())
	}

	defer ffjson.Pool(buf)

	var tmpPath = fmt.Sprintf("%s.%s.tmp", path, common.GetUUID())

	if err = os.WriteFile(tmpPath, buf, 0600); err != nil {
		return fmt.Errorf("Cannot write temporary snapshot %s: %s",
			tmpPath,
			err.Error())
	} else if err = os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // nolint: errcheck
		return fmt.Errorf("Cannot rename %s to %s: %s",
			tmpPath,
			path,
			err.Error())
	}

	return nil
} // func writeSnapshot(path string, records interface{}) error
