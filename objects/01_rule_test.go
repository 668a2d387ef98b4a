// /home/krylon/go/src/github.com/blicero/hermes/objects/01_rule_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-11 20:31:46 krylon>

package objects

import (
	"strings"
	"testing"
	"time"
)

func TestRuleDueToday(t *testing.T) {
	type testCase struct {
		r         Rule
		ref       time.Time
		expectDue time.Time
	}

	var cases = []testCase{
		testCase{
			r:         Rule{ID: 1, Hour: 9, Minute: 0, Message: "Morning routine", Enabled: true},
			ref:       time.Date(2023, 3, 7, 8, 0, 0, 0, time.UTC),
			expectDue: time.Date(2023, 3, 7, 9, 0, 0, 0, time.UTC),
		},
		testCase{
			r:         Rule{ID: 2, Hour: 18, Minute: 30, Message: "Evening break", Enabled: true},
			ref:       time.Date(2023, 3, 7, 23, 59, 59, 0, time.UTC),
			expectDue: time.Date(2023, 3, 7, 18, 30, 0, 0, time.UTC),
		},
		testCase{
			r:         Rule{ID: 3, Hour: 0, Minute: 0, Message: "Midnight", Enabled: true},
			ref:       time.Date(2023, 12, 31, 13, 15, 0, 0, time.UTC),
			expectDue: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, c := range cases {
		var due = c.r.DueToday(c.ref)

		if !due.Equal(c.expectDue) {
			t.Errorf("Unexpected due time for Rule %d: expected %s, got %s",
				c.r.ID,
				c.expectDue.Format(time.RFC3339),
				due.Format(time.RFC3339))
		}
	}
} // func TestRuleDueToday(t *testing.T)

func TestRuleValidate(t *testing.T) {
	type testCase struct {
		r           Rule
		expectError bool
	}

	var cases = []testCase{
		testCase{
			r: Rule{ID: 1, Hour: 9, Minute: 0, Message: "Morning routine", Enabled: true},
		},
		testCase{
			r:           Rule{ID: 0, Hour: 9, Minute: 0, Message: "No ID"},
			expectError: true,
		},
		testCase{
			r:           Rule{ID: 2, Hour: 24, Minute: 0, Message: "Bad hour"},
			expectError: true,
		},
		testCase{
			r:           Rule{ID: 3, Hour: 9, Minute: 60, Message: "Bad minute"},
			expectError: true,
		},
		testCase{
			r:           Rule{ID: 4, Hour: 9, Minute: 0, Message: ""},
			expectError: true,
		},
		testCase{
			r:           Rule{ID: 5, Hour: 9, Minute: 0, Message: strings.Repeat("x", MaxMessageLen+1)},
			expectError: true,
		},
		testCase{
			r: Rule{ID: 6, Hour: 9, Minute: 0, Message: strings.Repeat("x", MaxMessageLen)},
		},
	}

	for _, c := range cases {
		var err = c.r.Validate()

		if c.expectError && err == nil {
			t.Errorf("Rule %d should not validate, but it does",
				c.r.ID)
		} else if !c.expectError && err != nil {
			t.Errorf("Rule %d should validate, but: %s",
				c.r.ID,
				err.Error())
		}
	}
} // func TestRuleValidate(t *testing.T)

func TestNextRuleID(t *testing.T) {
	if id := NextRuleID(nil); id != 1 {
		t.Errorf("NextRuleID on an empty collection should be 1, not %d",
			id)
	}

	var rules = DefaultRules()

	if id := NextRuleID(rules); id != 3 {
		t.Errorf("NextRuleID after the default seed should be 3, not %d",
			id)
	}

	rules = append(rules, Rule{ID: 42, Hour: 12, Minute: 0, Message: "Lunch"})

	if id := NextRuleID(rules); id != 43 {
		t.Errorf("NextRuleID should be 43, not %d",
			id)
	}
} // func TestNextRuleID(t *testing.T)

func TestDefaultRules(t *testing.T) {
	var rules = DefaultRules()

	if len(rules) != 2 {
		t.Fatalf("Unexpected number of default Rules: %d (expected 2)",
			len(rules))
	} else if rules[0].ID != 1 || rules[1].ID != 2 {
		t.Errorf("Unexpected IDs on default Rules: %d, %d (expected 1, 2)",
			rules[0].ID,
			rules[1].ID)
	}

	for idx := range rules {
		var err error
		if err = rules[idx].Validate(); err != nil {
			t.Errorf("Default Rule %d does not validate: %s",
				rules[idx].ID,
				err.Error())
		} else if !rules[idx].Enabled {
			t.Errorf("Default Rule %d should be enabled",
				rules[idx].ID)
		}
	}
} // func TestDefaultRules(t *testing.T)
