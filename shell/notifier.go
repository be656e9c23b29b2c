// Package shell talks to the Windows shell: folder icon notification, live
// icon handles and file attributes.
package shell

import log "github.com/schollz/logger"

// Notifier tells the shell a folder's icon changed so Explorer refreshes it
// without a restart.
type Notifier interface {
	SetFolderIcon(folder, iconFile string, index int) error
	ClearFolderIcon(folder string) error
}

// LogNotifier only logs. It stands in where there is no shell to notify.
type LogNotifier struct{}

func (LogNotifier) SetFolderIcon(folder, iconFile string, index int) error {
	log.Debugf("folder %q icon -> %s,%d", folder, iconFile, index)
	return nil
}

func (LogNotifier) ClearFolderIcon(folder string) error {
	log.Debugf("folder %q icon cleared", folder)
	return nil
}
