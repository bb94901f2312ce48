// Package watch reports changes to genv sources using OS notifications.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is a bit set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event is a change to one path.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher turns fsnotify events into Events for files with the watched
// extension.
type Watcher struct {
	w         *fsnotify.Watcher
	extension string
	evC       chan Event
	erC       chan error
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
}

// New creates a watcher for files ending in extension. An empty extension
// matches every file.
func New(extension string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{w: w, extension: extension, evC: make(chan Event, 128), erC: make(chan error, 1), done: make(chan struct{}), exited: make(chan struct{})}
	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	defer close(fw.exited)
	defer close(fw.evC)
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if fw.extension != "" && !strings.HasSuffix(ev.Name, fw.extension) {
				continue
			}
			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}
			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}
			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}
			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}
			if ev.Op&fsnotify.Chmod != 0 {
				op |= OpChmod
			}
			select {
			case fw.evC <- Event{Path: ev.Name, Op: op, Time: time.Now()}:
			case <-fw.done:
				return
			}
		case <-fw.done:
			return
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		}
	}
}

func (fw *Watcher) Events() <-chan Event { return fw.evC }
func (fw *Watcher) Errors() <-chan error { return fw.erC }

// Close stops the watcher and waits for its goroutine to exit. Events
// nobody has received are dropped.
func (fw *Watcher) Close() error {
	fw.closeOnce.Do(func() { close(fw.done) })
	err := fw.w.Close()
	<-fw.exited
	return err
}

// Add watches the directory holding path. Editors often replace files
// instead of writing them, which only the directory observes.
func (fw *Watcher) Add(path string) error {
	dir := path
	if filepath.Ext(path) != "" {
		dir = filepath.Dir(path)
	}
	for _, watched := range fw.w.WatchList() {
		if watched == dir {
			return nil
		}
	}
	return fw.w.Add(dir)
}

// Run calls onChange once per burst of events, after quiet has elapsed
// without a new one. It returns when ctx is done or the watcher is closed.
func (fw *Watcher) Run(ctx context.Context, quiet time.Duration, onChange func([]Event)) error {
	var (
		pending []Event
		timer   *time.Timer
		fire    <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-fw.erC:
			return err
		case ev, ok := <-fw.evC:
			if !ok {
				return nil
			}
			if ev.Op == OpChmod {
				continue
			}
			pending = append(pending, ev)
			if timer == nil {
				timer = time.NewTimer(quiet)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(quiet)
			}
			fire = timer.C
		case <-fire:
			batch := pending
			pending = nil
			fire = nil
			onChange(batch)
		}
	}
}
