// Package desktopini reads and writes the [.ShellClassInfo] section of a
// folder's desktop.ini.
package desktopini

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	log "github.com/schollz/logger"
	"golang.org/x/text/encoding/unicode"
	"gopkg.in/ini.v1"

	"github.com/dentalwings/folderstyle/shell"
)

const (
	FileName = "desktop.ini"
	Section  = ".ShellClassInfo"

	KeyLocalizedName = "LocalizedResourceName"
)

func init() {
	// Explorer does not care, but keep "key=value" without padding like
	// every desktop.ini it writes itself.
	ini.PrettyFormat = false
}

type Encoding int

const (
	ANSI Encoding = iota
	UTF8BOM
	UTF16LE
)

func (e Encoding) String() string {
	switch e {
	case UTF8BOM:
		return "utf-8 bom"
	case UTF16LE:
		return "utf-16le"
	}
	return "ansi"
}

var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16LE = []byte{0xff, 0xfe}
)

var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	SkipUnrecognizableLines: true,
	PreserveSurroundedQuote: true,
}

// File is a loaded desktop.ini. A missing file loads as empty and is only
// created by Save.
type File struct {
	path   string
	ini    *ini.File
	enc    Encoding
	exists bool
}

// Load reads dir's desktop.ini.
func Load(dir string) (*File, error) {
	f := &File{path: filepath.Join(dir, FileName)}
	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.ini = ini.Empty(loadOptions)
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("desktopini: %w", err)
	}
	f.exists = true
	text, enc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("desktopini: decoding %s: %w", f.path, err)
	}
	f.enc = enc
	f.ini, err = ini.LoadSources(loadOptions, text)
	if err != nil {
		return nil, fmt.Errorf("desktopini: parsing %s: %w", f.path, err)
	}
	log.Debugf("loaded %s (%s)", f.path, enc)
	return f, nil
}

func decode(data []byte) ([]byte, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE):
		text, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		return text, UTF16LE, err
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], UTF8BOM, nil
	}
	text, err := codePage.NewDecoder().Bytes(data)
	return text, ANSI, err
}

func (f *File) Path() string { return f.path }

func (f *File) Exists() bool { return f.exists }

func (f *File) Encoding() Encoding { return f.enc }

// section finds [.ShellClassInfo] ignoring case. With create set, a missing
// section is added.
func (f *File) section(create bool) *ini.Section {
	for _, s := range f.ini.Sections() {
		if strings.EqualFold(s.Name(), Section) {
			return s
		}
	}
	if !create {
		return nil
	}
	return f.ini.Section(Section)
}

func findKey(s *ini.Section, name string) *ini.Key {
	for _, k := range s.Keys() {
		if strings.EqualFold(k.Name(), name) {
			return k
		}
	}
	return nil
}

// Get returns the value of key, or "" when it is not set.
func (f *File) Get(key string) string {
	s := f.section(false)
	if s == nil {
		return ""
	}
	if k := findKey(s, key); k != nil {
		return k.String()
	}
	return ""
}

func (f *File) Set(key, value string) {
	s := f.section(true)
	if k := findKey(s, key); k != nil {
		k.SetValue(value)
		return
	}
	s.Key(key).SetValue(value)
}

func (f *File) Delete(key string) {
	s := f.section(false)
	if s == nil {
		return
	}
	if k := findKey(s, key); k != nil {
		s.DeleteKey(k.Name())
	}
}

// Empty reports whether [.ShellClassInfo] has no keys left.
func (f *File) Empty() bool {
	s := f.section(false)
	return s == nil || len(s.Keys()) == 0
}

func (f *File) nonASCII() bool {
	for _, s := range f.ini.Sections() {
		for _, k := range s.Keys() {
			if !isASCII(k.Value()) || !isASCII(k.Name()) {
				return true
			}
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Save writes the file back in the encoding it was read in. An ANSI file
// whose values no longer fit the code page is upgraded to UTF-16LE, and so
// is a new file with any non-ASCII value. The file ends up hidden and
// system.
func (f *File) Save() error {
	if !f.exists && f.enc == ANSI && f.nonASCII() {
		f.enc = UTF16LE
	}
	var buf bytes.Buffer
	if _, err := f.ini.WriteTo(&buf); err != nil {
		return fmt.Errorf("desktopini: %w", err)
	}
	data := buf.Bytes()
	if f.enc == ANSI {
		ansi, err := codePage.NewEncoder().Bytes(data)
		if err == nil {
			data = ansi
		} else {
			log.Debugf("%s does not fit the ANSI code page, writing %s", f.path, UTF16LE)
			f.enc = UTF16LE
		}
	}
	switch f.enc {
	case UTF8BOM:
		data = append(append([]byte{}, bomUTF8...), data...)
	case UTF16LE:
		var err error
		data, err = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes(data)
		if err != nil {
			return fmt.Errorf("desktopini: encoding: %w", err)
		}
	}

	if f.exists {
		if err := shell.Unhide(f.path); err != nil {
			log.Debugf("clearing attributes of %s: %v", f.path, err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("desktopini: %w", err)
	}
	f.exists = true
	if err := shell.Hide(f.path); err != nil {
		log.Warnf("hiding %s: %v", f.path, err)
	}
	log.Debugf("saved %s (%s)", f.path, f.enc)
	return nil
}
