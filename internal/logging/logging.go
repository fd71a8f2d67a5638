// Package logging assembles the slog logger used by the reactive CLI.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options controls which handlers New attaches.
type Options struct {
	// JSON switches the terminal handler from text to JSON.
	JSON bool

	// Journal controls the systemd journal handler: JournalAuto attaches it
	// when the process runs as a systemd service.
	Journal JournalMode
}

// JournalMode selects whether logs go to the systemd journal.
type JournalMode uint8

const (
	JournalAuto JournalMode = iota
	JournalOn
	JournalOff
)

// New returns a logger writing to w at level. Under systemd the terminal
// handler is dropped and records go to the journal instead.
func New(w io.Writer, level slog.Leveler, opts Options) *slog.Logger {
	var handlers []slog.Handler

	useJournal := opts.Journal == JournalOn
	if opts.Journal == JournalAuto {
		useJournal = isSystemdService()
	}

	// local
	var terminalHandler slog.Handler
	if !useJournal || opts.Journal == JournalOn {
		hopts := &slog.HandlerOptions{Level: level}
		if opts.JSON {
			terminalHandler = slog.NewJSONHandler(w, hopts)
		} else {
			terminalHandler = slog.NewTextHandler(w, hopts)
		}
		handlers = append(handlers, terminalHandler)
	}

	// systemd journal
	if useJournal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			if terminalHandler == nil {
				terminalHandler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
				handlers = append(handlers, terminalHandler)
			}
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = terminalHandler.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// ParseLevel maps a configuration string to a level. The empty string is
// info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}

func isSystemdService() bool {
	cgroupPath, err := getCgroupPath()
	if err != nil {
		return false
	}
	return strings.HasSuffix(path.Dir(cgroupPath), ".service")
}

func getCgroupPath() (string, error) {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) >= 3 {
		return parts[2], nil
	}
	return "", nil
}
