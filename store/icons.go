// /home/krylon/go/src/github.com/blicero/hermes/store/icons.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 03. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-14 16:41:02 krylon>

package store

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blicero/hermes/common"
	"github.com/blicero/krylib"
)

// MaxIconSize is the upper limit on the size of an uploaded icon.
const MaxIconSize = 2 * 1024 * 1024 // 2 MiB

// iconExtensions is the set of file name extensions the icon store
// recognizes as images.
var iconExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".ico":  true,
	".svg":  true,
}

// ValidIconName returns true if the given file name carries one of
// the recognized image extensions.
func ValidIconName(name string) bool {
	return iconExtensions[strings.ToLower(filepath.Ext(name))]
} // func ValidIconName(name string) bool

// ListIcons enumerates the stored icon files, filtered to the
// recognized image extensions, in lexical order. Enumeration failures
// are logged and yield an empty list.
func (s *Store) ListIcons() []string {
	var (
		err     error
		entries []os.DirEntry
		icons   = make([]string, 0, 8)
	)

	if entries, err = os.ReadDir(common.IconDir); err != nil {
		s.log.Printf("[ERROR] Cannot read icon directory %s: %s\n",
			common.IconDir,
			err.Error())
		return icons
	}

	for _, entry := range entries {
		if !entry.IsDir() && ValidIconName(entry.Name()) {
			icons = append(icons, entry.Name())
		}
	}

	sort.Strings(icons)

	return icons
} // func (s *Store) ListIcons() []string

// StoreIcon saves an uploaded image under a name derived from its
// content, so identical data always maps to the identical file name
// and re-uploading an image one already has is a no-op. The stored
// file name is returned; write failures are the caller's problem.
func (s *Store) StoreIcon(data []byte, origName string) (string, error) {
	var (
		err      error
		ex       bool
		ext      = strings.ToLower(filepath.Ext(origName))
		cksum    = md5.Sum(data)
		filename = fmt.Sprintf("custom_%x%s", cksum, ext)
		path     = filepath.Join(common.IconDir, filename)
	)

	if ex, err = krylib.Fexists(path); err != nil {
		s.log.Printf("[ERROR] Cannot check for icon %s: %s\n",
			path,
			err.Error())
		return "", err
	} else if ex {
		s.log.Printf("[DEBUG] Icon %s already exists, skipping write\n",
			filename)
		return filename, nil
	}

	if err = os.WriteFile(path, data, 0600); err != nil {
		s.log.Printf("[ERROR] Cannot write icon %s: %s\n",
			path,
			err.Error())
		return "", err
	}

	s.log.Printf("[DEBUG] Stored icon %s (%d bytes, originally %q)\n",
		filename,
		len(data),
		origName)

	return filename, nil
} // func (s *Store) StoreIcon(data []byte, origName string) (string, error)

// IconPath resolves an icon reference from a Rule to the path of the
// stored file. An empty reference, the literal string "undefined" (a
// relic of the data's origin), a name without an extension, or a file
// that does not exist all resolve to "", meaning no icon.
func (s *Store) IconPath(ref string) string {
	if ref == "" || ref == "undefined" || !strings.Contains(ref, ".") {
		return ""
	}

	var (
		err  error
		ex   bool
		path = filepath.Join(common.IconDir, ref)
	)

	if ex, err = krylib.Fexists(path); err != nil {
		s.log.Printf("[ERROR] Cannot check for icon %s: %s\n",
			path,
			err.Error())
		return ""
	} else if !ex {
		s.log.Printf("[DEBUG] Icon %s not found, notification goes out bare\n",
			ref)
		return ""
	}

	return path
} // func (s *Store) IconPath(ref string) string
