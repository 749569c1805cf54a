package logger

import "sync"

// named holds the loggers installed with Register, keyed by component.
var named sync.Map

// Register installs l as the logger Get returns for name. A nil l removes
// the entry.
func Register(name string, l *Logger) {
	if l == nil {
		named.Delete(name)
		return
	}
	named.Store(name, l)
}

// Get returns the logger installed for name. Without one it derives a
// logger from the global one with component=name, so a later
// SetGlobalLogger is picked up.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
