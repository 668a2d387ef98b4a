// /home/krylon/go/src/github.com/blicero/hermes/objects/task.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-11 20:16:55 krylon>

package objects

import (
	"fmt"
	"time"
)

//go:generate ffjson task.go

// MaxTaskLen is the upper limit on the length of a Task's text.
const MaxTaskLen = 100

// Task is one item on the user's to-do list.
// CompletedAt is nil while the Task is not completed; it records the
// most recent toggle to completed, not the first.
// The field tags are dictated by the on-disk format of todos.json.
type Task struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewTask creates a fresh, uncompleted Task with the given text,
// created at the given time. The ID is relative to the collection the
// Task is meant to live in.
func NewTask(tasks []Task, text string, now time.Time) Task {
	return Task{
		ID:        NextTaskID(tasks),
		Text:      text,
		CreatedAt: now,
	}
} // func NewTask(tasks []Task, text string, now time.Time) Task

// Toggle flips the Task's completion state. Toggling to completed
// stamps CompletedAt with the given time, toggling back clears it.
func (t *Task) Toggle(now time.Time) {
	if t.Completed {
		t.Completed = false
		t.CompletedAt = nil
	} else {
		t.Completed = true
		t.CompletedAt = &now
	}
} // func (t *Task) Toggle(now time.Time)

// Validate checks the Task for well-formedness.
func (t *Task) Validate() error {
	if t.ID < 1 {
		return fmt.Errorf("Invalid Task ID %d (must be positive)",
			t.ID)
	} else if t.Text == "" {
		return fmt.Errorf("Task %d has an empty text",
			t.ID)
	} else if len(t.Text) > MaxTaskLen {
		return fmt.Errorf("Text of Task %d is too long (%d characters, max is %d)",
			t.ID,
			len(t.Text),
			MaxTaskLen)
	} else if t.Completed && t.CompletedAt == nil {
		return fmt.Errorf("Task %d is completed but has no completion time",
			t.ID)
	}

	return nil
} // func (t *Task) Validate() error

// ValidateTasks checks every member of the given collection and the
// uniqueness of their IDs.
func ValidateTasks(tasks []Task) error {
	var (
		err  error
		seen = make(map[int64]bool, len(tasks))
	)

	for idx := range tasks {
		if err = tasks[idx].Validate(); err != nil {
			return err
		} else if seen[tasks[idx].ID] {
			return fmt.Errorf("Duplicate Task ID %d",
				tasks[idx].ID)
		}

		seen[tasks[idx].ID] = true
	}

	return nil
} // func ValidateTasks(tasks []Task) error

// NextTaskID returns the ID for the next Task to be added to the
// given collection.
func NextTaskID(tasks []Task) int64 {
	var max int64

	for idx := range tasks {
		if tasks[idx].ID > max {
			max = tasks[idx].ID
		}
	}

	return max + 1
} // func NextTaskID(tasks []Task) int64
