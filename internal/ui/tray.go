package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/cutdesk/cutdesk-agent/internal/analysis"
	"github.com/cutdesk/cutdesk-agent/internal/library"
)

type Tray struct {
	library *library.Service
	runner  *analysis.Runner
	logger  *slog.Logger

	statusItem *systray.MenuItem
	clipsItem  *systray.MenuItem
	pauseItem  *systray.MenuItem

	mu sync.Mutex

	onOpenEditor func() error
	onQuit       func()
}

type TrayConfig struct {
	Library      *library.Service
	Runner       *analysis.Runner
	Logger       *slog.Logger
	OnOpenEditor func() error
	OnQuit       func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		library:      cfg.Library,
		runner:       cfg.Runner,
		logger:       cfg.Logger,
		onOpenEditor: cfg.OnOpenEditor,
		onQuit:       cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Cutdesk")
	systray.SetTooltip("Cutdesk Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.clipsItem = systray.AddMenuItem("Clips: 0", "Imported clips")
	t.clipsItem.Disable()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause", "Pause analysis jobs")

	openItem := systray.AddMenuItem("Open Editor...", "Open the editor in your browser")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Cutdesk Agent")

	go func() {
		for {
			select {
			case <-t.pauseItem.ClickedCh:
				t.togglePause()
			case <-openItem.ClickedCh:
				t.handleOpenEditor()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) togglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner == nil {
		return
	}

	if t.runner.IsPaused() {
		t.runner.Resume()
		t.pauseItem.SetTitle("Pause")
		t.statusItem.SetTitle("Status: Idle")
	} else {
		t.runner.Pause()
		t.pauseItem.SetTitle("Resume")
		t.statusItem.SetTitle("Status: Paused")
	}
}

func (t *Tray) handleOpenEditor() {
	if t.onOpenEditor != nil {
		if err := t.onOpenEditor(); err != nil {
			t.logger.Error("failed to open editor", "error", err)
		}
	}
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner != nil && t.runner.IsPaused() {
		return
	}
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateClipsCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clipsItem.SetTitle(fmt.Sprintf("Clips: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
