//go:build !windows

package shell

func NewNotifier() Notifier { return LogNotifier{} }
