// /home/krylon/go/src/github.com/blicero/hermes/objects/response.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-03-19 17:43:21 krylon>

package objects

import "time"

//go:generate ffjson response.go

// Response is what the backend sends to a client after processing a
// request. On success, Message may carry a payload (e.g. the filename
// of a freshly stored icon).
type Response struct {
	ID        int64
	Timestamp time.Time
	Status    bool
	Message   string
}
