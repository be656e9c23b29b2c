// Package folderstyle customizes how Explorer shows a folder: its display
// name and its icon, both kept in the folder's desktop.ini.
package folderstyle

import (
	"errors"
	"fmt"
	"io/fs"

	log "github.com/schollz/logger"

	"github.com/dentalwings/folderstyle/desktopini"
	"github.com/dentalwings/folderstyle/iconpath"
	"github.com/dentalwings/folderstyle/shell"
)

// ErrAccessDenied is returned when the folder or its desktop.ini cannot be
// written.
var ErrAccessDenied = errors.New("folderstyle: access denied")

// Settings is what a user edits for one folder. Icon is "path[,index]" as
// typed or picked; Alias is the display name.
type Settings struct {
	Alias string
	Icon  string
}

type Editor struct {
	resolver *iconpath.Resolver
	notifier shell.Notifier
}

func NewEditor(r *iconpath.Resolver, n shell.Notifier) *Editor {
	return &Editor{resolver: r, notifier: n}
}

func access(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	return err
}

// Load reads the folder's current settings. IconResource wins; otherwise
// IconFile and IconIndex are combined. %SystemRoot% is reported as stored.
func (e *Editor) Load(folder string) (Settings, error) {
	ini, err := desktopini.Load(folder)
	if err != nil {
		return Settings{}, access(err)
	}
	s := Settings{Alias: ini.Get(desktopini.KeyLocalizedName)}
	if res := ini.Get(iconpath.KeyIconResource); res != "" {
		s.Icon = res
	} else if file := ini.Get(iconpath.KeyIconFile); file != "" {
		index := ini.Get(iconpath.KeyIconIndex)
		if index == "" {
			index = "0"
		}
		s.Icon = file + "," + index
	}
	return s, nil
}

// Save resolves the icon, rewrites desktop.ini and asks the shell to
// refresh the folder. Stale icon keys are always removed first so an old
// IconFile/IconIndex cannot shadow a new IconResource. An empty Alias
// removes LocalizedResourceName; an empty Icon removes the icon.
func (e *Editor) Save(folder string, s Settings) (iconpath.Reference, error) {
	ini, err := desktopini.Load(folder)
	if err != nil {
		return iconpath.Reference{}, access(err)
	}
	ref, err := e.resolver.Resolve(folder, s.Icon)
	if err != nil {
		return iconpath.Reference{}, access(err)
	}

	if s.Alias == "" {
		ini.Delete(desktopini.KeyLocalizedName)
	} else {
		ini.Set(desktopini.KeyLocalizedName, s.Alias)
	}
	for _, k := range iconpath.IconKeys {
		ini.Delete(k)
	}
	for _, p := range ref.Pairs() {
		ini.Set(p.Key, p.Value)
	}

	if ini.Exists() || !ini.Empty() {
		if err := ini.Save(); err != nil {
			return iconpath.Reference{}, access(err)
		}
		if err := shell.MarkFolder(folder); err != nil {
			log.Warnf("marking %s: %v", folder, err)
		}
	}

	if ref.Kind == iconpath.None {
		err = e.notifier.ClearFolderIcon(folder)
	} else {
		file, index := ref.Location()
		err = e.notifier.SetFolderIcon(folder, file, index)
	}
	if err != nil {
		return ref, access(fmt.Errorf("folderstyle: notifying shell: %w", err))
	}
	log.Infof("saved %s: alias %q, icon %s %v", folder, s.Alias, ref.Kind, ref.Pairs())
	return ref, nil
}

// Clear removes the folder's icon but keeps its alias. When nothing is
// left in [.ShellClassInfo] the folder loses the read-only bit Explorer
// uses to look for desktop.ini.
func (e *Editor) Clear(folder string) error {
	ini, err := desktopini.Load(folder)
	if err != nil {
		return access(err)
	}
	if ini.Exists() {
		for _, k := range iconpath.IconKeys {
			ini.Delete(k)
		}
		if err := ini.Save(); err != nil {
			return access(err)
		}
	}
	if err := e.notifier.ClearFolderIcon(folder); err != nil {
		return access(fmt.Errorf("folderstyle: notifying shell: %w", err))
	}
	if ini.Empty() {
		if err := shell.UnmarkFolder(folder); err != nil {
			log.Warnf("unmarking %s: %v", folder, err)
		}
	}
	log.Infof("cleared icon of %s", folder)
	return nil
}
