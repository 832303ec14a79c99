// Package logging hands out prefixed golog loggers that follow the
// configured level.
//
// golog.Child copies the parent's level when the child is created, which
// for package loggers happens at init, before the configuration is read.
// SetLevel therefore updates every child handed out here as well.
package logging

import (
	"sync"

	"github.com/kataras/golog"
)

var (
	mu       sync.Mutex
	children []*golog.Logger
)

// Child returns a logger that prefixes its lines with prefix
func Child(prefix string) *golog.Logger {
	l := golog.Child(prefix)
	mu.Lock()
	children = append(children, l)
	mu.Unlock()
	return l
}

// SetLevel sets the level of the default logger and of every child
func SetLevel(level string) {
	golog.SetLevel(level)
	mu.Lock()
	defer mu.Unlock()
	for _, c := range children {
		c.SetLevel(level)
	}
}
