package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"procfleet/stats"
)

// Ncurses implements FleetUI with a full-screen tview/tcell dashboard:
// a header summary, a progress panel, and a scrolling event log.
type Ncurses struct {
	app           *tview.Application
	headerText    *tview.TextView
	progressText  *tview.TextView
	eventsText    *tview.TextView
	layout        *tview.Flex
	mu            sync.Mutex
	eventLines    []string
	maxEventLines int
	stopped       bool
	onInterrupt   func()
}

// NewNcurses creates a new dashboard UI.
func NewNcurses() *Ncurses {
	return &Ncurses{maxEventLines: 200}
}

// SetInterruptHandler installs a callback run when the user presses Ctrl+C
// or 'q', so the caller can cancel the in-flight fleet run.
func (u *Ncurses) SetInterruptHandler(handler func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onInterrupt = handler
}

func (u *Ncurses) Start() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.app = tview.NewApplication()

	u.headerText = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignLeft)
	u.headerText.SetBorder(true).SetTitle(" procfleet ").SetTitleAlign(tview.AlignLeft)
	u.headerText.SetText("[yellow]Starting fleet...[white]")

	u.progressText = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignLeft)
	u.progressText.SetBorder(true).SetTitle(" Progress ").SetTitleAlign(tview.AlignLeft)
	u.progressText.SetText("Waiting for jobs to complete...")

	u.eventsText = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() { u.app.Draw() })
	u.eventsText.SetBorder(true).SetTitle(" Events ").SetTitleAlign(tview.AlignLeft)
	u.eventsText.SetText("No events yet...")

	u.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(u.headerText, 3, 0, false).
		AddItem(u.progressText, 6, 0, false).
		AddItem(u.eventsText, 0, 1, false)

	u.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			u.interrupt()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' || event.Rune() == 'Q' {
				u.interrupt()
				return nil
			}
		}
		return event
	})

	go func() {
		_ = u.app.SetRoot(u.layout, true).EnableMouse(true).Run()
	}()

	time.Sleep(100 * time.Millisecond)
	return nil
}

func (u *Ncurses) interrupt() {
	u.app.Stop()
	u.mu.Lock()
	handler := u.onInterrupt
	u.mu.Unlock()
	if handler != nil {
		go handler()
	}
}

func (u *Ncurses) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.stopped {
		return
	}
	u.stopped = true
	if u.app != nil {
		u.app.Stop()
	}
	time.Sleep(100 * time.Millisecond)
}

func (u *Ncurses) LogEvent(slot int, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.app == nil || u.stopped {
		return
	}

	ts := time.Now().Format("15:04:05")
	u.eventLines = append(u.eventLines, fmt.Sprintf("[%s] [cyan][slot %d][white] %s", ts, slot, message))
	if len(u.eventLines) > u.maxEventLines {
		u.eventLines = u.eventLines[1:]
	}

	text := ""
	for _, line := range u.eventLines {
		text += line + "\n"
	}

	u.app.QueueUpdateDraw(func() {
		u.eventsText.SetText(text)
		u.eventsText.ScrollToEnd()
	})
}

func (u *Ncurses) OnStatsUpdate(s stats.FleetStats) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.app == nil || u.stopped {
		return
	}

	header := fmt.Sprintf("[yellow]Running:[white] %d/%d jobs | [green]Elapsed:[white] %s",
		s.Succeeded+s.Failed+s.Skipped, s.Queued, stats.FormatDuration(s.Elapsed))

	progress := fmt.Sprintf(
		"[green]%c Succeeded:[white]  %3d\n"+
			"[red]%c Failed:[white]     %3d\n"+
			"[yellow]%c Skipped:[white]    %3d\n"+
			"Workers: %d/%d   Rate: %s/hr   Load: %.2f",
		'✓', s.Succeeded,
		'✗', s.Failed,
		'⊙', s.Skipped,
		s.ActiveWorkers, s.DynMaxWorkers,
		stats.FormatRate(s.Rate), s.Load,
	)
	if s.DynMaxWorkers < s.MaxWorkers {
		progress += fmt.Sprintf("\n[orange]THROTTLED:[white] %s", stats.ThrottleReason(s))
	}

	u.app.QueueUpdateDraw(func() {
		u.headerText.SetText(header)
		u.progressText.SetText(progress)
	})
}
