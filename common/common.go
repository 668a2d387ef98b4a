// /home/krylon/go/src/github.com/blicero/hermes/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-16 21:48:33 krylon>

// Package common provides constants and functions used throughout
// the application: names, paths, time stamp formats, loggers.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/blicero/hermes/logdomain"
	"github.com/hashicorp/logutils"
	"github.com/odeke-em/go-uuid"
)

// AppName is the name the application goes by, Version is, well, the version,
// and BuildStamp is the time when the running binary was built.
const (
	AppName    = "Hermes"
	Version    = "0.4.2"
	BuildStamp = "2023-05-16 21:50:04"
	Debug      = true
)

// DefaultPort is the TCP port the backend listens on if no other
// address was given.
const DefaultPort = 7202

// Time stamp formats used in various places.
const (
	TimestampFormat          = "2006-01-02 15:04:05"
	TimestampFormatMinute    = "2006-01-02 15:04"
	TimestampFormatSubSecond = "2006-01-02 15:04:05.0000 MST"
	TimestampFormatTime      = "15:04:05"
	TimestampFormatDate      = "2006-01-02"
)

// Names of the files and directories the application keeps inside its
// base directory.
const (
	ruleFile = "notifications.json"
	taskFile = "todos.json"
	iconDir  = "custom-icons"
)

// LogLevels are the log levels, sorted by severity, used throughout
// the application.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

// MinLogLevel is the severity threshold below which log messages are
// discarded.
var MinLogLevel logutils.LogLevel = "TRACE"

// Paths of the various files and directories the application uses.
// They all live beneath BaseDir, SetBaseDir adjusts them in one go.
var (
	BaseDir  = filepath.Join(xdg.ConfigHome, "hermes")
	LogPath  = filepath.Join(BaseDir, "hermes.log")
	ConfPath = filepath.Join(BaseDir, "config.toml")
	RulePath = filepath.Join(BaseDir, ruleFile)
	TaskPath = filepath.Join(BaseDir, taskFile)
	IconDir  = filepath.Join(BaseDir, iconDir)
)

// SetBaseDir sets the application's base directory and adjusts the
// paths of the files that live inside it. Mainly useful for testing.
func SetBaseDir(path string) error {
	fmt.Printf("Setting BaseDir to %s\n", path)

	BaseDir = path
	LogPath = filepath.Join(BaseDir, "hermes.log")
	ConfPath = filepath.Join(BaseDir, "config.toml")
	RulePath = filepath.Join(BaseDir, ruleFile)
	TaskPath = filepath.Join(BaseDir, taskFile)
	IconDir = filepath.Join(BaseDir, iconDir)

	return InitApp()
} // func SetBaseDir(path string) error

// InitApp creates the application's base directory and the icon
// directory inside it, if they do not exist already.
func InitApp() error {
	var err error

	if err = os.MkdirAll(BaseDir, 0700); err != nil {
		return fmt.Errorf("Error creating BaseDir %s: %s",
			BaseDir,
			err.Error())
	} else if err = os.MkdirAll(IconDir, 0700); err != nil {
		return fmt.Errorf("Error creating icon directory %s: %s",
			IconDir,
			err.Error())
	}

	return nil
} // func InitApp() error

// GetLogger returns a Logger for the given log source, writing both
// to stderr and the application's log file.
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err error
		fh  *os.File
	)

	if err = InitApp(); err != nil {
		return nil, fmt.Errorf("Error initializing application environment: %s",
			err.Error())
	}

	if fh, err = os.OpenFile(LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err != nil {
		return nil, fmt.Errorf("Error opening log file %s: %s",
			LogPath,
			err.Error())
	}

	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: MinLogLevel,
		Writer:   io.MultiWriter(os.Stderr, fh),
	}

	var logger = log.New(
		filter,
		fmt.Sprintf("%s %s ", AppName, dom),
		log.Ldate|log.Ltime|log.Lshortfile)

	return logger, nil
} // func GetLogger(dom logdomain.ID) (*log.Logger, error)

// GetUUID returns a randomly generated UUID.
func GetUUID() string {
	return uuid.NewRandom().String()
} // func GetUUID() string
