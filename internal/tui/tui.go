// Package tui runs a game session in a terminal: mouse clicks pick squares, keys drive the session.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/render"
	"github.com/rocketscienceinc/othello-session/internal/session"
)

type gameSession interface {
	StartGame(ctx context.Context) (session.Snapshot, error)
	SetHumanSide(side entity.Side) (session.Snapshot, error)
	SubmitHumanMove(ctx context.Context, coord entity.Coord) (session.Snapshot, error)
	TriggerAIMove(ctx context.Context) (session.Snapshot, error)
	Snapshot() session.Snapshot
	Subscribe(listener session.Listener) func()
}

type UI struct {
	logger   *slog.Logger
	screen   tcell.Screen
	terminal *render.Terminal
	session  gameSession

	mu          sync.Mutex
	lastVersion uint64
	rendered    bool
	buttons     tcell.ButtonMask

	wg sync.WaitGroup
}

func New(logger *slog.Logger, screen tcell.Screen, terminal *render.Terminal, gameSession gameSession) *UI {
	return &UI{
		logger:   logger.With("component", "tui"),
		screen:   screen,
		terminal: terminal,
		session:  gameSession,
	}
}

// Run draws the session and handles terminal events until 'q' or Escape is pressed or ctx is cancelled.
// Session calls run off the event loop so the screen stays responsive while the authority answers.
func (that *UI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := that.session.Subscribe(that.draw)
	defer unsubscribe()

	that.screen.EnableMouse()
	that.draw(that.session.Snapshot())

	events := make(chan tcell.Event)
	go func() {
		for {
			event := that.screen.PollEvent()
			if event == nil {
				close(events)
				return
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	defer func() {
		cancel()
		that.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if quit := that.handle(ctx, event); quit {
				return nil
			}
		}
	}
}

func (that *UI) handle(ctx context.Context, event tcell.Event) bool {
	switch ev := event.(type) {
	case *tcell.EventResize:
		that.screen.Sync()
		that.redraw()

	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'n':
			that.async(func() error {
				_, err := that.session.StartGame(ctx)
				return err
			})
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
			that.async(func() error {
				_, err := that.session.TriggerAIMove(ctx)
				return err
			})
		case ev.Key() == tcell.KeyRune && ev.Rune() == 's':
			human := that.session.Snapshot().HumanPlayer
			if _, err := that.session.SetHumanSide(human.Opponent()); err != nil {
				that.screen.Beep()
			}
		}

	case *tcell.EventMouse:
		that.mu.Lock()
		pressed := ev.Buttons()&tcell.Button1 != 0 && that.buttons&tcell.Button1 == 0
		that.buttons = ev.Buttons()
		that.mu.Unlock()

		if !pressed {
			return false
		}

		x, y := ev.Position()
		coord, ok := that.terminal.Geometry().Map(x, y)
		if !ok {
			return false
		}

		that.async(func() error {
			_, err := that.session.SubmitHumanMove(ctx, coord)
			return err
		})
	}

	return false
}

func (that *UI) async(call func() error) {
	that.wg.Add(1)
	go func() {
		defer that.wg.Done()

		err := call()
		switch {
		case err == nil, apperror.IsSilent(err):
		case errors.Is(err, context.Canceled):
		default:
			that.logger.Warn("session call failed", "error", err)
		}
	}()
}

// draw renders snapshot unless a newer one is already on screen.
func (that *UI) draw(snapshot session.Snapshot) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.rendered && snapshot.Version < that.lastVersion {
		return
	}

	that.rendered = true
	that.lastVersion = snapshot.Version
	that.terminal.Render(snapshot, snapshot.Highlight())
}

func (that *UI) redraw() {
	snapshot := that.session.Snapshot()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastVersion = snapshot.Version
	that.terminal.Render(snapshot, snapshot.Highlight())
}
