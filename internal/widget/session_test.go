package widget

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	drivers []catalog.Driver
	theme   Theme
	prompts []string
	err     error
}

func (h *fakeHost) ToolOutput() []catalog.Driver { return h.drivers }
func (h *fakeHost) Theme() Theme                 { return h.theme }

func (h *fakeHost) SendFollowup(_ context.Context, prompt string) error {
	if h.err != nil {
		return h.err
	}
	h.prompts = append(h.prompts, prompt)
	return nil
}

// 2026-01-05 is a Monday.
var monday = time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)

func driver(id, name string) catalog.Driver {
	return catalog.Driver{
		ID:              id,
		Name:            name,
		Photo:           "https://images.example/" + id + ".jpg",
		Rating:          4.5,
		TotalRides:      100,
		YearsExperience: 3,
		HourlyRate:      42.5,
		Vehicle:         catalog.Vehicle{Type: "Sedan", Model: "Camry", Color: "Black"},
		ServiceArea:     catalog.ServiceArea{City: "Oakland", State: "CA", Radius: 15},
		Specialties:     []string{"Airport", "Night"},
		Availability: catalog.Availability{
			"monday":  {"9:00 AM - 5:00 PM", "7:00 PM - 9:00 PM"},
			"tuesday": {},
		},
	}
}

func threeDrivers() []catalog.Driver {
	return []catalog.Driver{driver("d1", "Ann"), driver("d2", "Bo"), driver("d3", "Cy")}
}

func newTestSession(h *fakeHost) *Session {
	return NewSession(h, WithClock(func() time.Time { return monday }))
}

// step runs one session move that must succeed.
func step(t *testing.T, move func() (View, error)) View {
	t.Helper()
	v, err := move()
	require.NoError(t, err)
	return v
}

func parse(t *testing.T, v View) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(v.HTML)))
	require.NoError(t, err)
	return doc
}

func TestNavigationWraps(t *testing.T) {
	s := newTestSession(&fakeHost{drivers: threeDrivers()})

	assert.Equal(t, 0, s.Index())
	step(t, s.Next)
	step(t, s.Next)
	assert.Equal(t, 2, s.Index())
	step(t, s.Next)
	assert.Equal(t, 0, s.Index())
	step(t, s.Prev)
	assert.Equal(t, 2, s.Index())

	// N steps either way come back to the start.
	for i := 0; i < 3; i++ {
		step(t, s.Prev)
	}
	assert.Equal(t, 2, s.Index())
}

func TestPrevThenNextIsNoop(t *testing.T) {
	s := newTestSession(&fakeHost{drivers: threeDrivers()})
	for start := 0; start < 3; start++ {
		_, err := s.Select(start)
		require.NoError(t, err)
		step(t, s.Prev)
		step(t, s.Next)
		assert.Equal(t, start, s.Index())
	}
}

func TestNavigationOnEmptySet(t *testing.T) {
	s := newTestSession(&fakeHost{})

	v := step(t, s.Next)
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, StateEmpty, v.State)
	v = step(t, s.Prev)
	assert.Equal(t, StateEmpty, v.State)
}

func TestSelect(t *testing.T) {
	s := newTestSession(&fakeHost{drivers: threeDrivers()})

	v, err := s.Select(2)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Index)

	for _, i := range []int{-1, 3, 100} {
		_, err := s.Select(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, 2, s.Index(), "index unchanged after bad select")
	}
}

func TestPerformSendsFollowups(t *testing.T) {
	h := &fakeHost{drivers: threeDrivers()}
	s := newTestSession(h)
	step(t, s.Next)
	ctx := context.Background()

	for _, action := range []string{"book", "schedule", "view-schedule", "details"} {
		_, err := s.Perform(ctx, action)
		require.NoError(t, err, action)
	}

	assert.Equal(t, []string{
		"I want to book Bo for a ride",
		"Show me Bo's availability schedule",
		"Show me Bo's availability schedule",
		"Tell me more about Bo",
	}, h.prompts)
	assert.Equal(t, 1, s.Index(), "actions never move the carousel")
}

func TestPerformContactIsLocal(t *testing.T) {
	d := driver("d1", "Ann")
	d.Contact = &catalog.Contact{Phone: "+1 510 555 0100", Email: "ann@example.com"}
	h := &fakeHost{drivers: []catalog.Driver{d}}
	s := newTestSession(h)

	v, err := s.Perform(context.Background(), "contact")
	require.NoError(t, err)
	assert.Empty(t, h.prompts)
	assert.True(t, v.ShowContact)

	doc := parse(t, v)
	assert.Contains(t, doc.Find(".contact-phone").Text(), "+1 510 555 0100")
	assert.Contains(t, doc.Find(".contact-email").Text(), "ann@example.com")

	// Disclosure is not remembered.
	v = step(t, s.Render)
	assert.False(t, v.ShowContact)
	assert.Equal(t, 0, parse(t, v).Find(".contact").Length())
}

func TestPerformContactWithoutDetails(t *testing.T) {
	s := newTestSession(&fakeHost{drivers: threeDrivers()})

	v, err := s.Perform(context.Background(), "contact")
	require.NoError(t, err)
	assert.Contains(t, parse(t, v).Find(".contact").Text(), "Contact details are shared once a ride is booked.")
}

func TestPerformErrors(t *testing.T) {
	h := &fakeHost{drivers: threeDrivers()}
	s := newTestSession(h)

	_, err := s.Perform(context.Background(), "teleport")
	assert.ErrorIs(t, err, ErrUnknownAction)

	empty := newTestSession(&fakeHost{})
	_, err = empty.Perform(context.Background(), "book")
	assert.ErrorIs(t, err, ErrNoDriver)

	h.err = errors.New("host busy")
	_, err = s.Perform(context.Background(), "book")
	assert.ErrorIs(t, err, h.err)
	assert.Empty(t, h.prompts)
}

func TestRefresh(t *testing.T) {
	h := &fakeHost{drivers: threeDrivers(), theme: ThemeLight}
	s := newTestSession(h)
	_, err := s.Select(2)
	require.NoError(t, err)

	// Theme change keeps position.
	h.theme = ThemeDark
	v := step(t, s.Refresh)
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, ThemeDark, v.Theme)
	assert.Equal(t, 1, parse(t, v).Find(".app-container.dark").Length())

	// Same ids in a fresh slice keep position.
	h.drivers = threeDrivers()
	step(t, s.Refresh)
	assert.Equal(t, 2, s.Index())

	// A different result set starts over.
	h.drivers = []catalog.Driver{driver("d9", "Zed"), driver("d1", "Ann"), driver("d2", "Bo")}
	step(t, s.Refresh)
	assert.Equal(t, 0, s.Index())

	// Shrinking to nothing renders the placeholder.
	_, err = s.Select(1)
	require.NoError(t, err)
	h.drivers = nil
	v = step(t, s.Refresh)
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, StateEmpty, v.State)
}

func TestParseAction(t *testing.T) {
	tests := map[string]Action{
		"book":          ActionBook,
		" Schedule ":    ActionSchedule,
		"view-schedule": ActionSchedule,
		"details":       ActionDetails,
		"contact":       ActionContact,
	}
	for in, want := range tests {
		got, err := ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseAction("")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestParseTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, ParseTheme("DARK"))
	assert.Equal(t, ThemeLight, ParseTheme("light"))
	assert.Equal(t, ThemeLight, ParseTheme("sepia"))
	assert.Equal(t, ThemeLight, ParseTheme(""))
}

func TestRenderFailurePropagates(t *testing.T) {
	broken := template.Must(template.New("widget").Parse(`{{define "app"}}{{.Missing}}{{end}}`))
	s := NewSession(&fakeHost{drivers: threeDrivers()},
		WithRenderer(&Renderer{loc: time.UTC, tmpl: broken}),
		WithClock(func() time.Time { return monday }))

	_, err := s.Render()
	assert.Error(t, err)
	_, err = s.Next()
	assert.Error(t, err)
	assert.Equal(t, 1, s.Index(), "the move itself still happens")

	// A render failure wins over the rejected transition.
	_, err = s.Select(9)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIndexOutOfRange)
}
