package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"ropes/internal/ui"
)

// resolveUI maps --ui (auto|on|off) to whether the TUI should run.
func resolveUI(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// runWithProgress runs work while reporting its events. With the TUI the
// events drive a Bubble Tea program; otherwise finished items are printed
// one line each. report may be called from several goroutines.
func runWithProgress(out io.Writer, title string, items []string, useTUI bool, work func(report func(ui.Event)) error) error {
	if !useTUI {
		var mu sync.Mutex
		return work(func(ev ui.Event) {
			if ev.Status != ui.StatusDone && ev.Status != ui.StatusError {
				return
			}
			line := fmt.Sprintf("%-8s %s", ev.Status, ev.Item)
			if ev.Note != "" {
				line += "  " + ev.Note
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(out, line)
		})
	}

	events := make(chan ui.Event, 256)
	workErr := make(chan error, 1)
	go func() {
		err := work(func(ev ui.Event) { events <- ev })
		close(events)
		workErr <- err
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, items, events), tea.WithOutput(out))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep the worker from blocking on a full channel.
		go func() {
			for range events {
			}
		}()
	}
	err := <-workErr
	if uiErr != nil {
		return uiErr
	}
	return err
}
