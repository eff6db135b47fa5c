// Package obslog is witnetd's logging surface. The teacher never reaches
// for a structured-logging library anywhere in its tree (api, mempool,
// scanner, cmd/engine all log via the standard library's log.Printf with
// a bracketed component prefix) so this package keeps that idiom rather
// than introducing one: a thin prefix-per-component wrapper around log.
package obslog

import "log"

// Logger prefixes every line with a component tag, matching the
// "[Poller]"/"[consolidator]" bracket convention used throughout the
// codebase.
type Logger struct {
	component string
}

func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) Infof(format string, args ...any) {
	log.Printf("["+l.component+"] "+format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	log.Printf("["+l.component+"] WARNING: "+format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	log.Printf("["+l.component+"] ERROR: "+format, args...)
}

func (l *Logger) Fatalf(format string, args ...any) {
	log.Fatalf("["+l.component+"] FATAL: "+format, args...)
}
