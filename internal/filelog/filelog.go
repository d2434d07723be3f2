// Package filelog writes per-session rotating log files for a watcher, per
// spec.md §4.6. Writes are serialized through a single goroutine owning an
// internal task queue so concurrent Append calls never interleave.
package filelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vforsh/argus/internal/model"
	"github.com/vforsh/argus/internal/util"
)

const DefaultMaxFiles = 5

// Header carries the fields written at the top of each session log file,
// per spec.md §4.6.
type Header struct {
	WatcherID    string
	StartedAt    time.Time
	ChromeHost   string
	ChromePort   int
	MatchDesc    string
	PageURL      string
	PageSearch   string
	PageTitle    string
}

type writeTask struct {
	line   string
	header *Header
}

// Logger writes watcher-<id>-<iso>-<index>.log files under Dir, rotating on
// navigation and pruning to MaxFiles. All field access happens on the
// internal task-queue goroutine; Append/Rotate/Close only send to tasksC.
type Logger struct {
	Dir       string
	WatcherID string
	MaxFiles  int

	tasksC   chan func()
	doneC    chan struct{}
	lastURL  string

	index    int
	file     *os.File
	failed   bool
	header   *Header
}

// New starts a Logger's task-queue goroutine. Call Close to flush and stop
// it.
func New(dir, watcherID string, maxFiles int) *Logger {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	l := &Logger{
		Dir:       dir,
		WatcherID: watcherID,
		MaxFiles:  maxFiles,
		tasksC:    make(chan func(), 256),
		doneC:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Logger) run() {
	defer close(l.doneC)
	for task := range l.tasksC {
		task()
	}
}

// SetHeader installs the header written to the next file created. Call
// before the first Append of a session.
func (l *Logger) SetHeader(h Header) {
	l.tasksC <- func() {
		l.header = &h
	}
}

// Append enqueues one LogEvent line. Non-blocking from the caller's
// perspective beyond the channel send; actual I/O happens on the queue
// goroutine.
func (l *Logger) Append(e model.LogEvent) {
	l.tasksC <- func() {
		l.appendLocked(e)
	}
}

// Rotate flushes and closes the current file, per spec.md §4.6
// onPageNavigation: the next Append lazily creates a new, incremented file.
func (l *Logger) Rotate() {
	l.tasksC <- func() {
		l.closeCurrent()
		l.index++
	}
}

// Close flushes, closes the current file, and stops the queue goroutine.
func (l *Logger) Close() {
	done := make(chan struct{})
	l.tasksC <- func() {
		l.closeCurrent()
		close(done)
	}
	<-done
	close(l.tasksC)
	<-l.doneC
}

func (l *Logger) appendLocked(e model.LogEvent) {
	if l.failed {
		return
	}
	if l.file == nil {
		if err := l.openNew(); err != nil {
			l.failed = true
			return
		}
	}

	line := formatLine(e, l.lastURL)
	if e.PageURL != "" {
		l.lastURL = e.PageURL
	}

	if _, err := l.file.WriteString(line); err != nil {
		l.failed = true
		return
	}
}

func (l *Logger) openNew() error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("filelog: failed to create directory %q: %w", l.Dir, err)
	}
	name := fileName(l.WatcherID, time.Now(), l.index)
	path := filepath.Join(l.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("filelog: failed to create file %q: %w", path, err)
	}
	if l.header != nil {
		if _, err := f.WriteString(formatHeader(*l.header)); err != nil {
			f.Close()
			return fmt.Errorf("filelog: failed to write header to %q: %w", path, err)
		}
	}
	l.file = f

	go l.pruneAsync()
	return nil
}

func (l *Logger) closeCurrent() {
	if l.file == nil {
		return
	}
	_ = l.file.Sync()
	_ = l.file.Close()
	l.file = nil
}

// pruneAsync removes the oldest files belonging to WatcherID beyond
// MaxFiles, by modification time, per spec.md §4.6.
func (l *Logger) pruneAsync() {
	prefix := fmt.Sprintf("watcher-%s-", l.WatcherID)
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return
	}
	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var owned []fileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		owned = append(owned, fileInfo{path: filepath.Join(l.Dir, e.Name()), modTime: info.ModTime()})
	}
	if len(owned) <= l.MaxFiles {
		return
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].modTime.Before(owned[j].modTime) })
	for _, f := range owned[:len(owned)-l.MaxFiles] {
		_ = os.Remove(f.path)
	}
}

func fileName(watcherID string, t time.Time, index int) string {
	return fmt.Sprintf("watcher-%s-%s-%d.log", watcherID, util.FormatRFC3339Milli(t), index)
}

func formatHeader(h Header) string {
	var b strings.Builder
	fmt.Fprintf(&b, "watcherId: %s\n", h.WatcherID)
	fmt.Fprintf(&b, "startedAt: %s\n", util.FormatRFC3339Milli(h.StartedAt))
	fmt.Fprintf(&b, "chrome: %s:%d\n", h.ChromeHost, h.ChromePort)
	fmt.Fprintf(&b, "match: %s\n", h.MatchDesc)
	fmt.Fprintf(&b, "pageUrl: %s\n", h.PageURL)
	fmt.Fprintf(&b, "pageSearchParams: %s\n", h.PageSearch)
	fmt.Fprintf(&b, "pageTitle: %s\n", h.PageTitle)
	b.WriteString("---\n")
	return b.String()
}

func formatLine(e model.LogEvent, lastURL string) string {
	var b strings.Builder
	b.WriteString(util.FormatRFC3339Milli(time.UnixMilli(e.Ts)))
	fmt.Fprintf(&b, " [%s] %s", e.Level, e.Text)
	if e.Location != nil {
		b.WriteString(" at ")
		b.WriteString(e.Location.File)
		if e.Location.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Location.Line)
			if e.Location.Column > 0 {
				fmt.Fprintf(&b, ":%d", e.Location.Column)
			}
		}
	}
	if e.PageURL != "" && e.PageURL != lastURL {
		fmt.Fprintf(&b, " page=%s", e.PageURL)
	}
	b.WriteString("\n")
	return b.String()
}
