// /home/krylon/go/src/github.com/blicero/hermes/scheduler/scheduler.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-14 18:05:29 krylon>

// Package scheduler arms the day's notification timers. For every
// enabled Rule whose time of day has not passed yet, it keeps one
// one-shot timer that hands the Rule to a callback when it fires.
//
// A Rule whose time of day has already passed is not armed at all, it
// stays silent until the rule set is replaced or the process is
// restarted on a later day. There is deliberately no rollover to
// tomorrow and no catch-up firing.
package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/blicero/hermes/common"
	"github.com/blicero/hermes/logdomain"
	"github.com/blicero/hermes/objects"
)

// Scheduler keeps one pending timer per enabled, not-yet-due Rule.
// Rearm replaces the whole set; the Rule snapshot a timer carries is
// the one captured when it was armed.
type Scheduler struct {
	log    *log.Logger
	lock   sync.Mutex
	timers map[int64]*time.Timer
	fire   func(objects.Rule)
}

// New creates a Scheduler that delivers due Rules to the given
// callback. The callback runs on the timer's goroutine and should not
// dawdle.
func New(fire func(objects.Rule)) (*Scheduler, error) {
	var (
		err error
		s   = &Scheduler{
			timers: make(map[int64]*time.Timer),
			fire:   fire,
		}
	)

	if s.log, err = common.GetLogger(logdomain.Scheduler); err != nil {
		return nil, err
	}

	return s, nil
} // func New(fire func(objects.Rule)) (*Scheduler, error)

// Rearm replaces all pending timers with the ones implied by the
// given rule set, evaluated against the current time.
func (s *Scheduler) Rearm(rules []objects.Rule) {
	s.rearm(rules, time.Now())
} // func (s *Scheduler) Rearm(rules []objects.Rule)

func (s *Scheduler) rearm(rules []objects.Rule, now time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}

	for _, r := range rules {
		if !r.Enabled {
			continue
		}

		var target = r.DueToday(now)

		if !target.After(now) {
			s.log.Printf("[DEBUG] Rule %d (%s) is already past due today, skipping\n",
				r.ID,
				r.TimeString())
			continue
		}

		var rule = r // capture a per-timer snapshot

		s.timers[r.ID] = time.AfterFunc(
			target.Sub(now),
			func() { s.fired(rule) })

		s.log.Printf("[DEBUG] Armed Rule %d (%s) to fire at %s\n",
			r.ID,
			r.Message,
			target.Format(common.TimestampFormat))
	}
} // func (s *Scheduler) rearm(rules []objects.Rule, now time.Time)

func (s *Scheduler) fired(r objects.Rule) {
	s.lock.Lock()
	delete(s.timers, r.ID)
	s.lock.Unlock()

	s.log.Printf("[TRACE] Rule %d (%s) is due\n",
		r.ID,
		r.Message)

	s.fire(r)
} // func (s *Scheduler) fired(r objects.Rule)

// PendingCount returns the number of timers currently armed.
func (s *Scheduler) PendingCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.timers)
} // func (s *Scheduler) PendingCount() int

// Stop cancels all pending timers.
func (s *Scheduler) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
} // func (s *Scheduler) Stop()
