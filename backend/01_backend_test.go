// /home/krylon/go/src/github.com/blicero/hermes/backend/01_backend_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 16. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-16 21:29:18 krylon>

package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blicero/hermes/common"
	"github.com/blicero/hermes/objects"
	"github.com/pquerna/ffjson/ffjson"
)

const testPort = 7273

var (
	back    *Daemon
	testURL = fmt.Sprintf("http://localhost:%d", testPort)
)

func TestSummon(t *testing.T) {
	var (
		err     error
		baseDir = filepath.Join(
			os.TempDir(),
			fmt.Sprintf("hermes_backend_test_%d", time.Now().Unix()))
	)

	if err = common.SetBaseDir(baseDir); err != nil {
		t.Fatalf("Cannot set base directory to %s: %s",
			baseDir,
			err.Error())
	}

	if back, err = Summon(fmt.Sprintf("localhost:%d", testPort)); err != nil {
		back = nil
		t.Fatalf("Cannot create Daemon: %s",
			err.Error())
	}

	// Give the web server a moment to come up.
	var client http.Client

	for i := 0; i < 10; i++ {
		var res *http.Response
		if res, err = client.Get(testURL + "/rule/all"); err == nil {
			res.Body.Close() // nolint: errcheck
			return
		}
		time.Sleep(time.Millisecond * 100)
	}

	t.Fatalf("Web interface did not come up: %s", err.Error())
} // func TestSummon(t *testing.T)

func TestRuleGetAll(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err   error
		rules []objects.Rule
	)

	if err = fetchJSON(testURL+"/rule/all", &rules); err != nil {
		t.Fatalf("Cannot fetch Rules: %s", err.Error())
	} else if len(rules) != 2 {
		t.Fatalf("Fresh backend should serve the two default Rules, not %d",
			len(rules))
	} else if rules[0].ID != 1 || rules[1].ID != 2 {
		t.Errorf("Unexpected IDs on default Rules: %d, %d",
			rules[0].ID,
			rules[1].ID)
	}
} // func TestRuleGetAll(t *testing.T)

func TestRuleReplace(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err   error
		buf   []byte
		res   objects.Response
		rules = []objects.Rule{
			objects.Rule{ID: 1, Hour: 6, Minute: 15, Message: "Feed the cat", Enabled: true},
		}
	)

	if buf, err = ffjson.Marshal(rules); err != nil {
		t.Fatalf("Cannot serialize Rules: %s", err.Error())
	}

	if res, err = postForm(testURL+"/rule/replace", url.Values{"rules": []string{string(buf)}}); err != nil {
		t.Fatalf("Cannot POST Rules: %s", err.Error())
	} else if !res.Status {
		t.Fatalf("Replacing the Rules failed: %s", res.Message)
	}

	var loaded []objects.Rule

	if err = fetchJSON(testURL+"/rule/all", &loaded); err != nil {
		t.Fatalf("Cannot fetch Rules: %s", err.Error())
	} else if len(loaded) != 1 || loaded[0].Message != "Feed the cat" {
		t.Errorf("Unexpected Rule collection after replace: %#v",
			loaded)
	}
} // func TestRuleReplace(t *testing.T)

// Invalid records must be rejected at the boundary and leave the
// stored collection untouched.
func TestRuleReplaceInvalid(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var invalid = []string{
		`[{"id":1,"hour":25,"minute":0,"message":"Bad hour","icon":"","enabled":true}]`,
		`[{"id":1,"hour":9,"minute":0,"message":"","icon":"","enabled":true}]`,
		`[{"id":1,"hour":9,"minute":0,"message":"A","icon":"","enabled":true},
		  {"id":1,"hour":10,"minute":0,"message":"B","icon":"","enabled":true}]`,
		`this is not JSON at all`,
	}

	for _, body := range invalid {
		var (
			err error
			res objects.Response
		)

		if res, err = postForm(testURL+"/rule/replace", url.Values{"rules": []string{body}}); err != nil {
			t.Fatalf("Cannot POST Rules: %s", err.Error())
		} else if res.Status {
			t.Errorf("Backend accepted an invalid Rule list: %s",
				body)
		}
	}

	var loaded []objects.Rule

	if err := fetchJSON(testURL+"/rule/all", &loaded); err != nil {
		t.Fatalf("Cannot fetch Rules: %s", err.Error())
	} else if len(loaded) != 1 || loaded[0].Message != "Feed the cat" {
		t.Errorf("Rejected submissions should not change the stored Rules, got %#v",
			loaded)
	}
} // func TestRuleReplaceInvalid(t *testing.T)

func TestTaskReplaceAndGet(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err   error
		buf   []byte
		res   objects.Response
		now   = time.Now().Truncate(time.Second)
		tasks = make([]objects.Task, 0, 1)
	)

	tasks = append(tasks, objects.NewTask(tasks, "Buy milk", now))

	if buf, err = ffjson.Marshal(tasks); err != nil {
		t.Fatalf("Cannot serialize Tasks: %s", err.Error())
	}

	if res, err = postForm(testURL+"/task/replace", url.Values{"tasks": []string{string(buf)}}); err != nil {
		t.Fatalf("Cannot POST Tasks: %s", err.Error())
	} else if !res.Status {
		t.Fatalf("Replacing the Tasks failed: %s", res.Message)
	}

	var loaded []objects.Task

	if err = fetchJSON(testURL+"/task/all", &loaded); err != nil {
		t.Fatalf("Cannot fetch Tasks: %s", err.Error())
	} else if len(loaded) != 1 || loaded[0].Text != "Buy milk" || loaded[0].Completed {
		t.Errorf("Unexpected Task collection: %#v", loaded)
	}
} // func TestTaskReplaceAndGet(t *testing.T)

func TestIconUploadAndList(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err      error
		res      objects.Response
		icon     = []byte("pretend this is image data")
		filename string
	)

	if res, err = uploadIcon(testURL+"/icon/upload", "smiley.png", icon); err != nil {
		t.Fatalf("Cannot upload icon: %s", err.Error())
	} else if !res.Status {
		t.Fatalf("Icon upload failed: %s", res.Message)
	}

	filename = res.Message

	// Uploading the identical bytes again must yield the identical
	// name.
	if res, err = uploadIcon(testURL+"/icon/upload", "other_name.png", icon); err != nil {
		t.Fatalf("Cannot upload icon: %s", err.Error())
	} else if !res.Status {
		t.Fatalf("Second icon upload failed: %s", res.Message)
	} else if res.Message != filename {
		t.Errorf("Identical bytes got differing names %q and %q",
			filename,
			res.Message)
	}

	// A non-image upload must be rejected.
	if res, err = uploadIcon(testURL+"/icon/upload", "virus.exe", icon); err != nil {
		t.Fatalf("Cannot upload icon: %s", err.Error())
	} else if res.Status {
		t.Error("Backend accepted an upload that is not an image")
	}

	var icons []string

	if err = fetchJSON(testURL+"/icon/all", &icons); err != nil {
		t.Fatalf("Cannot fetch icon list: %s", err.Error())
	}

	var found bool

	for _, name := range icons {
		if name == filename {
			found = true
			break
		}
	}

	if !found {
		t.Errorf("Uploaded icon %q does not show up in the listing %v",
			filename,
			icons)
	}
} // func TestIconUploadAndList(t *testing.T)

// TestNotify needs a session bus and a notification service; in their
// absence (headless CI, for instance), it skips.
func TestNotify(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	if _, err := back.getBus(); err != nil {
		t.Skipf("No DBus session bus available: %s", err.Error())
	}

	var r = objects.Rule{
		ID:      42,
		Hour:    12,
		Minute:  0,
		Message: "Testing, one, two",
		Enabled: true,
	}

	if err := back.notify(r); err != nil {
		t.Errorf("Cannot send notification via DBus: %s",
			err.Error())
	}
} // func TestNotify(t *testing.T)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func fetchJSON(uri string, target interface{}) error {
	var (
		err error
		res *http.Response
		buf bytes.Buffer
	)

	if res, err = http.Get(uri); err != nil { // nolint: gosec,noctx
		return err
	}

	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("Unexpected HTTP status %s", res.Status)
	} else if _, err = io.Copy(&buf, res.Body); err != nil {
		return err
	}

	return ffjson.Unmarshal(buf.Bytes(), target)
} // func fetchJSON(uri string, target interface{}) error

func postForm(uri string, values url.Values) (objects.Response, error) {
	var (
		err  error
		res  *http.Response
		buf  bytes.Buffer
		ores objects.Response
	)

	if res, err = http.PostForm(uri, values); err != nil { // nolint: gosec,noctx
		return ores, err
	}

	defer res.Body.Close() // nolint: errcheck

	if _, err = io.Copy(&buf, res.Body); err != nil {
		return ores, err
	} else if err = ffjson.Unmarshal(buf.Bytes(), &ores); err != nil {
		return ores, err
	}

	return ores, nil
} // func postForm(uri string, values url.Values) (objects.Response, error)

func uploadIcon(uri, filename string, data []byte) (objects.Response, error) {
	var (
		err  error
		body bytes.Buffer
		ores objects.Response
	)

	var writer = multipart.NewWriter(&body)

	var part io.Writer

	if part, err = writer.CreateFormFile("icon", filename); err != nil {
		return ores, err
	} else if _, err = part.Write(data); err != nil {
		return ores, err
	} else if err = writer.Close(); err != nil {
		return ores, err
	}

	var res *http.Response

	if res, err = http.Post(uri, writer.FormDataContentType(), &body); err != nil { // nolint: gosec,noctx
		return ores, err
	}

	defer res.Body.Close() // nolint: errcheck

	var buf bytes.Buffer

	if _, err = io.Copy(&buf, res.Body); err != nil {
		return ores, err
	} else if err = ffjson.Unmarshal(buf.Bytes(), &ores); err != nil {
		return ores, err
	}

	return ores, nil
} // func uploadIcon(uri, filename string, data []byte) (objects.Response, error)
