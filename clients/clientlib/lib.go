// /home/krylon/go/src/github.com/blicero/hermes/clients/clientlib/lib.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-16 21:40:28 krylon>

// Package clientlib provides the basic framework for building
// frontends: it wraps the handful of HTTP operations the backend
// exposes, so a UI never has to speak HTTP itself.
package clientlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/blicero/hermes/common"
	"github.com/blicero/hermes/logdomain"
	"github.com/blicero/hermes/objects"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	uriRuleAll     = "/rule/all"
	uriRuleReplace = "/rule/replace"
	uriTaskAll     = "/task/all"
	uriTaskReplace = "/task/replace"
	uriIconAll     = "/icon/all"
	uriIconUpload  = "/icon/upload"
)

// Client is the basic implementation of a Hermes client, it
// implements the fundamental communication with the backend.
type Client struct {
	Server *url.URL
	Client http.Client
	log    *log.Logger
}

// NewClient creates a new Client talking to the backend at the given
// address.
func NewClient(srv string) (*Client, error) {
	var (
		err error
		c   = &Client{
			Client: http.Client{
				Timeout: time.Second * 10,
			},
		}
	)

	if c.log, err = common.GetLogger(logdomain.Client); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Logger: %s\n",
			err.Error())
		return nil, err
	} else if c.Server, err = url.Parse(srv); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			srv,
			err.Error())
		return nil, err
	}

	c.Server.Scheme = "http"

	return c, nil
} // func NewClient(srv string) (*Client, error)

// GetLogger returns the Client's logger.
func (c *Client) GetLogger() *log.Logger {
	return c.log
} // func (c *Client) GetLogger() *log.Logger

func (c *Client) uri(path string) string {
	var u = *c.Server
	u.Path = path
	return u.String()
} // func (c *Client) uri(path string) string

// GetRules fetches the current Rule collection from the backend.
func (c *Client) GetRules() ([]objects.Rule, error) {
	var rules []objects.Rule

	if err := c.fetch(uriRuleAll, &rules); err != nil {
		return nil, err
	}

	return rules, nil
} // func (c *Client) GetRules() ([]objects.Rule, error)

// ReplaceRules submits a full replacement Rule collection to the
// backend. On the backend side this re-arms the day's timers.
func (c *Client) ReplaceRules(rules []objects.Rule) error {
	var (
		err error
		buf []byte
	)

	if err = objects.ValidateRules(rules); err != nil {
		c.log.Printf("[ERROR] Refusing to submit invalid Rule list: %s\n",
			err.Error())
		return err
	} else if buf, err = ffjson.Marshal(rules); err != nil {
		c.log.Printf("[ERROR] Cannot serialize Rule list: %s\n",
			err.Error())
		return err
	}

	defer ffjson.Pool(buf)

	return c.submitForm(uriRuleReplace, url.Values{"rules": []string{string(buf)}})
} // func (c *Client) ReplaceRules(rules []objects.Rule) error

// GetTasks fetches the current Task collection from the backend.
func (c *Client) GetTasks() ([]objects.Task, error) {
	var tasks []objects.Task

	if err := c.fetch(uriTaskAll, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
} // func (c *Client) GetTasks() ([]objects.Task, error)

// ReplaceTasks submits a full replacement Task collection to the
// backend.
func (c *Client) ReplaceTasks(tasks []objects.Task) error {
	var (
		err error
		buf []byte
	)

	if err = objects.ValidateTasks(tasks); err != nil {
		c.log.Printf("[ERROR] Refusing to submit invalid Task list: %s\n",
			err.Error())
		return err
	} else if buf, err = ffjson.Marshal(tasks); err != nil {
		c.log.Printf("[ERROR] Cannot serialize Task list: %s\n",
			err.Error())
		return err
	}

	defer ffjson.Pool(buf)

	return c.submitForm(uriTaskReplace, url.Values{"tasks": []string{string(buf)}})
} // func (c *Client) ReplaceTasks(tasks []objects.Task) error

// AddTask is a convenience wrapper that fetches the Task collection,
// appends a fresh Task with the given text, and submits the result.
func (c *Client) AddTask(text string) (objects.Task, error) {
	var (
		err   error
		tasks []objects.Task
		tk    objects.Task
	)

	if tasks, err = c.GetTasks(); err != nil {
		return tk, err
	}

	tk = objects.NewTask(tasks, text, time.Now())

	if err = tk.Validate(); err != nil {
		c.log.Printf("[ERROR] Refusing to add invalid Task: %s\n",
			err.Error())
		return tk, err
	}

	return tk, c.ReplaceTasks(append(tasks, tk))
} // func (c *Client) AddTask(text string) (objects.Task, error)

// GetIcons fetches the list of stored icon file names from the
// backend.
func (c *Client) GetIcons() ([]string, error) {
	var icons []string

	if err := c.fetch(uriIconAll, &icons); err != nil {
		return nil, err
	}

	return icons, nil
} // func (c *Client) GetIcons() ([]string, error)

// UploadIcon submits an image to the backend's icon store and returns
// the name it was stored under. Uploading an image the backend
// already has is harmless and returns the existing name.
func (c *Client) UploadIcon(data []byte, filename string) (string, error) {
	var (
		err  error
		body bytes.Buffer
		part io.Writer
	)

	var writer = multipart.NewWriter(&body)

	if part, err = writer.CreateFormFile("icon", filename); err != nil {
		c.log.Printf("[ERROR] Cannot create multipart form: %s\n",
			err.Error())
		return "", err
	} else if _, err = part.Write(data); err != nil {
		c.log.Printf("[ERROR] Cannot write icon data to form: %s\n",
			err.Error())
		return "", err
	} else if err = writer.Close(); err != nil {
		c.log.Printf("[ERROR] Cannot finalize multipart form: %s\n",
			err.Error())
		return "", err
	}

	var hres *http.Response

	if hres, err = c.Client.Post(c.uri(uriIconUpload), writer.FormDataContentType(), &body); err != nil {
		c.log.Printf("[ERROR] Failed to POST icon to %s: %s\n",
			c.Server,
			err.Error())
		return "", err
	}

	var ores objects.Response

	if ores, err = c.readResponse(hres); err != nil {
		return "", err
	}

	return ores.Message, nil
} // func (c *Client) UploadIcon(data []byte, filename string) (string, error)

func (c *Client) fetch(path string, target interface{}) error {
	var (
		err    error
		hres   *http.Response
		rcvBuf bytes.Buffer
	)

	if hres, err = c.Client.Get(c.uri(path)); err != nil {
		c.log.Printf("[ERROR] Failed to GET %s: %s\n",
			path,
			err.Error())
		return err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		var msg = fmt.Sprintf("Unexpected status from %s: %s",
			path,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read response body from %s: %s\n",
			path,
			err.Error())
		return err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), target); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize response from %s: %s\n",
			path,
			err.Error())
		return err
	}

	return nil
} // func (c *Client) fetch(path string, target interface{}) error

func (c *Client) submitForm(path string, values url.Values) error {
	var (
		err  error
		hres *http.Response
	)

	if hres, err = c.Client.PostForm(c.uri(path), values); err != nil {
		c.log.Printf("[ERROR] Failed to POST to %s: %s\n",
			path,
			err.Error())
		return err
	}

	var ores objects.Response

	if ores, err = c.readResponse(hres); err != nil {
		return err
	}

	c.log.Printf("[DEBUG] Request to %s was successful: %s\n",
		path,
		ores.Message)

	return nil
} // func (c *Client) submitForm(path string, values url.Values) error

func (c *Client) readResponse(hres *http.Response) (objects.Response, error) {
	var (
		err    error
		rcvBuf bytes.Buffer
		ores   objects.Response
	)

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		err = fmt.Errorf("Unexpected status from %s: %s",
			hres.Request.URL,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", err.Error())
		return ores, err
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body: %s\n",
			err.Error())
		return ores, err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), &ores); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Response: %s\n",
			err.Error())
		return ores, err
	} else if !ores.Status {
		err = fmt.Errorf("Request failed: %s",
			ores.Message)
		c.log.Printf("[ERROR] %s\n",
			err.Error())
		return ores, err
	}

	return ores, nil
} // func (c *Client) readResponse(hres *http.Response) (objects.Response, error)
