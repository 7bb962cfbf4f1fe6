package widget

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("widget").
		Funcs(template.FuncMap{"num": num}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Render states, also used as metric labels.
const (
	StateEmpty    = "empty"
	StateSingle   = "single"
	StateCarousel = "carousel"
)

// State is everything a render depends on.
type State struct {
	Drivers     []catalog.Driver
	Index       int
	Theme       Theme
	Now         time.Time
	ShowContact bool
}

// View is a rendered widget.
type View struct {
	HTML        template.HTML
	State       string
	Index       int
	Total       int
	Theme       Theme
	ShowContact bool
}

// Renderer draws widget states. "Today" is evaluated in its location so the
// output does not depend on the server's locale.
type Renderer struct {
	loc  *time.Location
	tmpl *template.Template
}

// NewRenderer creates a renderer for loc. Nil means UTC.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{loc: loc, tmpl: templates}
}

type cardData struct {
	Theme       Theme
	Driver      catalog.Driver
	Stars       []string
	Today       string
	ShowContact bool
	Phone       string
	Email       string
}

type dot struct {
	Index  int
	Active bool
}

type appData struct {
	Empty    bool
	Theme    Theme
	Card     cardData
	Nav      bool
	Dots     []dot
	Position int
	Total    int
}

// Render draws st. An out-of-range index falls back to the first record.
func (r *Renderer) Render(st State) (View, error) {
	if st.Theme == "" {
		st.Theme = ThemeLight
	}
	n := len(st.Drivers)
	view := View{Total: n, Theme: st.Theme}

	data := appData{Theme: st.Theme, Total: n}
	switch {
	case n == 0:
		data.Empty = true
		view.State = StateEmpty
	default:
		if st.Index < 0 || st.Index >= n {
			st.Index = 0
		}
		d := st.Drivers[st.Index]
		data.Card = cardData{
			Theme:       st.Theme,
			Driver:      d,
			Stars:       Stars(d.Rating),
			Today:       r.today(d, st.Now),
			ShowContact: st.ShowContact,
		}
		if d.Contact != nil {
			data.Card.Phone = d.Contact.Phone
			data.Card.Email = d.Contact.Email
		}
		view.Index = st.Index
		view.ShowContact = st.ShowContact
		view.State = StateSingle

		if n > 1 {
			view.State = StateCarousel
			data.Nav = true
			data.Position = st.Index + 1
			data.Dots = make([]dot, n)
			for i := range data.Dots {
				data.Dots[i] = dot{Index: i, Active: i == st.Index}
			}
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "app", data); err != nil {
		return view, fmt.Errorf("render %s widget: %w", view.State, err)
	}
	view.HTML = template.HTML(buf.String())
	return view, nil
}

// Page wraps a view in a standalone HTML document.
func (r *Renderer) Page(v View) (string, error) {
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "page", struct {
		Theme Theme
		Body  template.HTML
	}{v.Theme, v.HTML})
	return buf.String(), err
}

func (r *Renderer) today(d catalog.Driver, now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	slots := d.Availability.Slots(catalog.DayOf(now.In(r.loc)))
	if len(slots) == 0 {
		return "Not available today"
	}
	return "Today: " + slots[0]
}

// Stars returns five star kinds: "full", then at most one "half" when the
// fractional part is at least .5, then "empty".
func Stars(rating float64) []string {
	rating = math.Max(0, math.Min(5, rating))
	full := int(math.Floor(rating))
	half := rating-float64(full) >= 0.5

	stars := make([]string, 0, 5)
	for i := 0; i < full; i++ {
		stars = append(stars, "full")
	}
	if half {
		stars = append(stars, "half")
	}
	for len(stars) < 5 {
		stars = append(stars, "empty")
	}
	return stars
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
