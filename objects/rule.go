// /home/krylon/go/src/github.com/blicero/hermes/objects/rule.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-11 20:14:08 krylon>

// Package objects provides the data types used by the application.
package objects

import (
	"fmt"
	"time"
)

//go:generate ffjson rule.go

// MaxMessageLen is the upper limit on the length of a Rule's message.
const MaxMessageLen = 200

// Rule describes one scheduled notification: every day at Hour:Minute,
// display Message, optionally decorated with a custom icon from the
// icon store. Disabled Rules are kept around but never fire.
// The field tags are dictated by the on-disk format of notifications.json.
type Rule struct {
	ID      int64  `json:"id"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
	Enabled bool   `json:"enabled"`
}

// DueToday returns the Rule's fire time on the day of the reference
// time, in the reference time's location.
func (r *Rule) DueToday(ref time.Time) time.Time {
	return time.Date(
		ref.Year(),
		ref.Month(),
		ref.Day(),
		r.Hour,
		r.Minute,
		0,
		0,
		ref.Location())
} // func (r *Rule) DueToday(ref time.Time) time.Time

// TimeString returns the Rule's time of day as HH:MM.
func (r *Rule) TimeString() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
} // func (r *Rule) TimeString() string

// Validate checks the Rule for well-formedness. Records that fail
// validation must not reach the store or the scheduler.
func (r *Rule) Validate() error {
	if r.ID < 1 {
		return fmt.Errorf("Invalid Rule ID %d (must be positive)",
			r.ID)
	} else if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("Invalid hour %d in Rule %d",
			r.Hour,
			r.ID)
	} else if r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("Invalid minute %d in Rule %d",
			r.Minute,
			r.ID)
	} else if r.Message == "" {
		return fmt.Errorf("Rule %d has an empty message",
			r.ID)
	} else if len(r.Message) > MaxMessageLen {
		return fmt.Errorf("Message of Rule %d is too long (%d characters, max is %d)",
			r.ID,
			len(r.Message),
			MaxMessageLen)
	}

	return nil
} // func (r *Rule) Validate() error

// NextRuleID returns the ID for the next Rule to be added to the
// given collection, i.e. the largest existing ID plus one.
func NextRuleID(rules []Rule) int64 {
	var max int64

	for idx := range rules {
		if rules[idx].ID > max {
			max = rules[idx].ID
		}
	}

	return max + 1
} // func NextRuleID(rules []Rule) int64

// ValidateRules checks every member of the given collection and the
// uniqueness of their IDs.
func ValidateRules(rules []Rule) error {
	var (
		err  error
		seen = make(map[int64]bool, len(rules))
	)

	for idx := range rules {
		if err = rules[idx].Validate(); err != nil {
			return err
		} else if seen[rules[idx].ID] {
			return fmt.Errorf("Duplicate Rule ID %d",
				rules[idx].ID)
		}

		seen[rules[idx].ID] = true
	}

	return nil
} // func ValidateRules(rules []Rule) error

// DefaultRules returns the seed collection the store falls back to
// when no usable notifications.json exists.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:      1,
			Hour:    9,
			Minute:  0,
			Message: "Morning routine",
			Enabled: true,
		},
		{
			ID:      2,
			Hour:    18,
			Minute:  0,
			Message: "Evening break",
			Enabled: true,
		},
	}
} // func DefaultRules() []Rule
