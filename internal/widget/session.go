package widget

import (
	"context"
	"fmt"
	"time"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
)

// Host is the agent host the widget is embedded in. It injects the last
// tool result and the theme, and accepts follow-up prompts.
type Host interface {
	ToolOutput() []catalog.Driver
	Theme() Theme
	SendFollowup(ctx context.Context, prompt string) error
}

// Session is one widget instance. It owns the carousel position; the record
// list and theme are read from the host. Not safe for concurrent use.
type Session struct {
	host     Host
	renderer *Renderer
	now      func() time.Time

	drivers []catalog.Driver
	theme   Theme
	index   int
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source used to pick today's availability.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRenderer sets the renderer, e.g. one bound to a non-UTC location.
func WithRenderer(r *Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// NewSession reads the host globals and starts at the first record.
func NewSession(host Host, opts ...Option) *Session {
	s := &Session{
		host: host,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = NewRenderer(time.UTC)
	}
	s.drivers = host.ToolOutput()
	s.theme = host.Theme()
	return s
}

// Index returns the position of the displayed record.
func (s *Session) Index() int { return s.index }

// Len returns the size of the injected result set.
func (s *Session) Len() int { return len(s.drivers) }

// Current returns the displayed record.
func (s *Session) Current() (catalog.Driver, bool) {
	if len(s.drivers) == 0 {
		return catalog.Driver{}, false
	}
	return s.drivers[s.index], true
}

// Render draws the current state.
func (s *Session) Render() (View, error) {
	return s.render(false)
}

// Next advances one record, wrapping to the first.
func (s *Session) Next() (View, error) {
	if n := len(s.drivers); n > 0 {
		s.index = (s.index + 1) % n
	}
	return s.Render()
}

// Prev steps back one record, wrapping to the last.
func (s *Session) Prev() (View, error) {
	if n := len(s.drivers); n > 0 {
		s.index = (s.index - 1 + n) % n
	}
	return s.Render()
}

// Select jumps to record i. An out-of-range i keeps the position and
// returns the current view alongside ErrIndexOutOfRange.
func (s *Session) Select(i int) (View, error) {
	if i < 0 || i >= len(s.drivers) {
		return s.fail(fmt.Errorf("select %d of %d: %w", i, len(s.drivers), ErrIndexOutOfRange))
	}
	s.index = i
	return s.Render()
}

// Perform handles a card button. Host-bound actions send a follow-up prompt
// naming the current driver; contact is answered locally in the returned
// view and leaves no state behind.
func (s *Session) Perform(ctx context.Context, name string) (View, error) {
	action, err := ParseAction(name)
	if err != nil {
		return s.fail(fmt.Errorf("%q: %w", name, err))
	}
	d, ok := s.Current()
	if !ok {
		return s.fail(ErrNoDriver)
	}

	if action == ActionContact {
		return s.render(true)
	}

	if err := s.host.SendFollowup(ctx, FollowupPrompt(action, d.Name)); err != nil {
		return s.fail(fmt.Errorf("send follow-up: %w", err))
	}
	return s.Render()
}

// Refresh re-reads the host globals. A different result set (by id sequence)
// starts over at the first record; the same set keeps the position.
func (s *Session) Refresh() (View, error) {
	next := s.host.ToolOutput()
	if !sameIDs(s.drivers, next) {
		s.index = 0
	}
	s.drivers = next
	s.theme = s.host.Theme()
	if s.index >= len(s.drivers) {
		s.index = 0
	}
	return s.Render()
}

// fail returns the current view with cause. A render failure wins.
func (s *Session) fail(cause error) (View, error) {
	v, err := s.Render()
	if err != nil {
		return v, err
	}
	return v, cause
}

func (s *Session) render(contact bool) (View, error) {
	return s.renderer.Render(State{
		Drivers:     s.drivers,
		Index:       s.index,
		Theme:       s.theme,
		Now:         s.now(),
		ShowContact: contact,
	})
}

// FollowupPrompt is the natural-language intent sent for a host-bound action.
func FollowupPrompt(action Action, name string) string {
	switch action {
	case ActionBook:
		return "I want to book " + name + " for a ride"
	case ActionSchedule:
		return "Show me " + name + "'s availability schedule"
	case ActionDetails:
		return "Tell me more about " + name
	}
	return ""
}

func sameIDs(a, b []catalog.Driver) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
