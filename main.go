// /home/krylon/go/src/github.com/blicero/hermes/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-16 21:55:40 krylon>

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blicero/hermes/backend"
	"github.com/blicero/hermes/common"
	"github.com/hashicorp/logutils"
)

func main() {
	fmt.Printf("%s %s (built %s)\n",
		common.AppName,
		common.Version,
		common.BuildStamp)

	var (
		err                    error
		daemon                 *backend.Daemon
		cfg                    *common.Config
		appDir, addr, logLevel string
	)

	flag.StringVar(
		&appDir,
		"appdir",
		common.BaseDir,
		"The directory where application-specific files live")

	flag.StringVar(
		&addr,
		"address",
		"",
		"Address to listen on (default from config file, or localhost:<default port>)")

	flag.StringVar(
		&logLevel,
		"loglevel",
		"",
		"Minimum log level (default from config file)")

	flag.Parse()

	if appDir != common.BaseDir {
		if err = common.SetBaseDir(appDir); err != nil {
			fmt.Fprintf(
				os.Stderr,
				"Cannot use %s as application directory: %s\n",
				appDir,
				err.Error())
			os.Exit(1)
		}
	}

	if cfg, err = common.LoadConfig(); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot load configuration: %s\n",
			err.Error())
		os.Exit(1)
	}

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}

	common.MinLogLevel = logutils.LogLevel(logLevel)

	if addr == "" {
		addr = fmt.Sprintf("localhost:%d", cfg.Port)
	}

	if daemon, err = backend.Summon(addr); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Failed to initialize backend: %s\n",
			err.Error())
		os.Exit(1)
	}

	var sigQ = make(chan os.Signal, 1)
	var ticker = time.NewTicker(time.Second * 2)

	signal.Notify(sigQ, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	for daemon.IsAlive() {
		select {
		case sig := <-sigQ:
			fmt.Printf("Quitting on signal %s\n", sig)
			daemon.Banish() // nolint: errcheck
			os.Exit(0)
		case <-ticker.C:
			continue
		}
	}
} // func main()
