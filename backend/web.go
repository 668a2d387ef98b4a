// /home/krylon/go/src/github.com/blicero/hermes/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-16 21:12:37 krylon>

package backend

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/blicero/hermes/objects"
	"github.com/blicero/hermes/store"
	"github.com/pquerna/ffjson/ffjson"
)

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc("/rule/all", d.handleRuleGetAll)
	d.router.HandleFunc("/rule/replace", d.handleRuleReplace)
	d.router.HandleFunc("/task/all", d.handleTaskGetAll)
	d.router.HandleFunc("/task/replace", d.handleTaskReplace)
	d.router.HandleFunc("/icon/all", d.handleIconGetAll)
	d.router.HandleFunc("/icon/upload", d.handleIconUpload)

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) handleRuleGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(d.store.Rules()); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Rule list: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleRuleGetAll(w http.ResponseWriter, r *http.Request)

// handleRuleReplace installs a full replacement Rule collection, as
// submitted by the UI, and re-arms the Scheduler from it. Validation
// happens here, at the boundary; the Store never sees invalid
// records.
func (d *Daemon) handleRuleReplace(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		rstr     string
		rules    []objects.Rule
		response = objects.Response{ID: d.getID(), Timestamp: time.Now()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	rstr = r.PostFormValue("rules")

	if err = ffjson.Unmarshal([]byte(rstr), &rules); err != nil {
		response.Message = fmt.Sprintf("Cannot parse Rule list: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	} else if err = objects.ValidateRules(rules); err != nil {
		response.Message = err.Error()
		d.log.Printf("[ERROR] Rejecting Rule list: %s\n", response.Message)
		goto SEND_RESPONSE
	}

	d.store.ReplaceRules(rules)
	d.sched.Rearm(rules)

	response.Message = fmt.Sprintf("%d Rules installed", len(rules))
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleRuleReplace(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTaskGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(d.store.Tasks()); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Task list: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleTaskGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTaskReplace(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		tstr     string
		tasks    []objects.Task
		response = objects.Response{ID: d.getID(), Timestamp: time.Now()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	tstr = r.PostFormValue("tasks")

	if err = ffjson.Unmarshal([]byte(tstr), &tasks); err != nil {
		response.Message = fmt.Sprintf("Cannot parse Task list: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	} else if err = objects.ValidateTasks(tasks); err != nil {
		response.Message = err.Error()
		d.log.Printf("[ERROR] Rejecting Task list: %s\n", response.Message)
		goto SEND_RESPONSE
	}

	d.store.ReplaceTasks(tasks)

	response.Message = fmt.Sprintf("%d Tasks installed", len(tasks))
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleTaskReplace(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleIconGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(d.store.ListIcons()); err != nil {
		d.log.Printf("[ERROR] Cannot serialize icon list: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleIconGetAll(w http.ResponseWriter, r *http.Request)

// handleIconUpload ingests a user-supplied notification icon. Unlike
// record saves, a failure to store the icon is reported to the
// client, so the user can be told and try again.
func (d *Daemon) handleIconUpload(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		file     multipart.File
		hdr      *multipart.FileHeader
		data     []byte
		filename string
		response = objects.Response{ID: d.getID(), Timestamp: time.Now()}
	)

	if err = r.ParseMultipartForm(store.MaxIconSize); err != nil {
		response.Message = fmt.Sprintf("Cannot parse multipart form: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	}

	if file, hdr, err = r.FormFile("icon"); err != nil {
		response.Message = fmt.Sprintf("No icon attached to upload: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	}

	defer file.Close() // nolint: errcheck

	if !store.ValidIconName(hdr.Filename) {
		response.Message = fmt.Sprintf("%q is not a recognized image file",
			hdr.Filename)
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	} else if hdr.Size > store.MaxIconSize {
		response.Message = fmt.Sprintf("Icon %q is too large (%d bytes, max is %d)",
			hdr.Filename,
			hdr.Size,
			store.MaxIconSize)
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	}

	if data, err = io.ReadAll(io.LimitReader(file, store.MaxIconSize+1)); err != nil {
		response.Message = fmt.Sprintf("Cannot read icon %q: %s",
			hdr.Filename,
			err.Error())
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	} else if len(data) > store.MaxIconSize {
		response.Message = fmt.Sprintf("Icon %q is too large (max is %d bytes)",
			hdr.Filename,
			store.MaxIconSize)
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	}

	if filename, err = d.store.StoreIcon(data, hdr.Filename); err != nil {
		response.Message = fmt.Sprintf("Cannot store icon %q: %s",
			hdr.Filename,
			err.Error())
		d.log.Printf("[ERROR] %s\n", response.Message)
		goto SEND_RESPONSE
	}

	response.Message = filename
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleIconUpload(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response)

func (d *Daemon) getID() int64 {
	d.idLock.Lock()
	d.idCnt++
	var id = d.idCnt
	d.idLock.Unlock()
	return id
} // func (d *Daemon) getID() int64
