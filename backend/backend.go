// /home/krylon/go/src/github.com/blicero/hermes/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-16 20:44:51 krylon>

// Package backend implements the daemon at the heart of the
// application: it owns the Store and the Scheduler, posts desktop
// notifications via DBus when a Rule comes due, and exposes the
// operations the UI needs over a small HTTP interface.
package backend

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/blicero/hermes/common"
	"github.com/blicero/hermes/logdomain"
	"github.com/blicero/hermes/objects"
	"github.com/blicero/hermes/scheduler"
	"github.com/blicero/hermes/store"
	"github.com/godbus/dbus/v5"
	"github.com/gorilla/mux"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	queueDepth   = 5
	queueTimeout = time.Second * 2
)

// Daemon is the centerpiece of the backend, coordinating between the
// Store, the Scheduler, DBus, and the clients.
type Daemon struct {
	log        *log.Logger
	store      *store.Store
	sched      *scheduler.Scheduler
	busLock    sync.Mutex
	bus        *dbus.Conn
	lock       sync.RWMutex
	active     bool
	Queue      chan objects.Rule
	web        http.Server
	router     *mux.Router
	listenAddr string
	idLock     sync.Mutex
	idCnt      int64
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is
// required. The DBus connection is made lazily on the first
// notification, so the Daemon comes up fine on a headless system; it
// just cannot display anything there.
func Summon(addr string) (*Daemon, error) {
	var (
		err error
		d   = &Daemon{
			listenAddr: addr,
			active:     true,
			Queue:      make(chan objects.Rule, queueDepth),
			router:     mux.NewRouter(),
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	} else if d.store, err = store.Open(); err != nil {
		d.log.Printf("[ERROR] Cannot open Store: %s\n",
			err.Error())
		return nil, err
	} else if d.sched, err = scheduler.New(d.enqueue); err != nil {
		d.log.Printf("[ERROR] Cannot create Scheduler: %s\n",
			err.Error())
		return nil, err
	}

	d.web.Addr = addr
	d.web.ErrorLog = d.log
	d.web.Handler = d.router

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		return nil, err
	}

	d.sched.Rearm(d.store.Rules())

	go d.notifyLoop()
	go d.serveHTTP()

	return d, nil
} // func Summon(addr string) (*Daemon, error)

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Banish clears the Daemon's active flag and tells its components to
// shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	)
	defer cancel()

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	d.sched.Stop()

	d.lock.Lock()
	d.active = false
	d.lock.Unlock()
	return err
} // func (d *Daemon) Banish() error

// enqueue hands a due Rule to the notification loop. The Scheduler's
// timer goroutine must never hang on a full queue, so an overflowing
// notification is dropped with a log message.
func (d *Daemon) enqueue(r objects.Rule) {
	select {
	case d.Queue <- r:
	default:
		d.log.Printf("[ERROR] Notification queue is full, dropping Rule %d (%q)\n",
			r.ID,
			r.Message)
	}
} // func (d *Daemon) enqueue(r objects.Rule)

func (d *Daemon) notifyLoop() {
	defer d.log.Println("[TRACE] Quitting notifyLoop")

	var (
		err  error
		tick = time.NewTicker(queueTimeout)
	)
	defer tick.Stop()

	for d.IsAlive() {
		select {
		case <-tick.C:
			continue
		case r := <-d.Queue:
			d.log.Printf("[DEBUG] Rule %d is due: %s\n",
				r.ID,
				r.Message)

			if err = d.notify(r); err != nil {
				d.log.Printf("[ERROR] Failed to post notification for Rule %d: %s\n",
					r.ID,
					err.Error())
			}
		}
	}
} // func (d *Daemon) notifyLoop()

func (d *Daemon) getBus() (*dbus.Conn, error) {
	d.busLock.Lock()
	defer d.busLock.Unlock()

	if d.bus != nil {
		return d.bus, nil
	}

	var err error

	if d.bus, err = dbus.SessionBus(); err != nil {
		d.bus = nil
		return nil, err
	}

	return d.bus, nil
} // func (d *Daemon) getBus() (*dbus.Conn, error)

func (d *Daemon) notify(r objects.Rule) error {
	var (
		err error
		bus *dbus.Conn
	)

	if bus, err = d.getBus(); err != nil {
		d.log.Printf("[ERROR] Cannot connect to DBus session bus: %s\n",
			err.Error())
		return err
	}

	var obj = bus.Object(notifyObj, notifyPath)

	if obj == nil {
		err = fmt.Errorf("Did not find object %s (%s) on session bus",
			notifyObj,
			notifyPath)
		d.log.Printf("[ERROR] %s\n", err.Error())
		return err
	}

	// A Rule whose icon cannot be resolved still gets displayed,
	// just without one.
	var icon = d.store.IconPath(r.Icon)

	var res = obj.Call(
		notifyMethod,
		0,
		common.AppName,
		uint32(0),
		icon,
		common.AppName,
		r.Message,
		[]string{},
		map[string]dbus.Variant{},
		int32(-1),
	)

	if res.Err != nil {
		d.log.Printf("[ERROR] Cannot send notification for Rule %d: %s\n",
			r.ID,
			res.Err.Error())
		return res.Err
	}

	return nil
} // func (d *Daemon) notify(r objects.Rule) error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web interface is going online at %s\n", d.web.Addr)

	if err = d.web.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] ListenAndServe returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()
