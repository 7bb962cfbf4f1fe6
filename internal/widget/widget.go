package widget

import (
	"errors"
	"strings"
)

// Resource identity of the widget document.
const (
	ResourceURI      = "ui://widget/driver-card.html"
	ResourceMimeType = "text/html+skybridge"
)

var (
	// ErrIndexOutOfRange is returned by Select for an index outside the result set.
	ErrIndexOutOfRange = errors.New("driver index out of range")
	// ErrUnknownAction is returned by Perform for an action outside the vocabulary.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoDriver is returned by Perform when there is nothing to act on.
	ErrNoDriver = errors.New("no driver selected")
)

// Theme is the host color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps anything other than "dark" to light.
func ParseTheme(s string) Theme {
	if strings.EqualFold(s, string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Action is a user intent raised from a card button.
type Action string

const (
	ActionBook     Action = "book"
	ActionSchedule Action = "schedule"
	ActionDetails  Action = "details"
	ActionContact  Action = "contact"
)

// ParseAction normalizes an action name. view-schedule is accepted as an
// alias of schedule.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionBook, ActionSchedule, ActionDetails, ActionContact:
		return a, nil
	case "view-schedule":
		return ActionSchedule, nil
	}
	return "", ErrUnknownAction
}

// Document builds the resource text: the mount point followed by the
// bundle as a module script. A nil bundle yields an empty script.
func Document(code []byte) string {
	var b strings.Builder
	b.Grow(len(code) + 64)
	b.WriteString(`<div id="root"></div>`)
	b.WriteByte('\n')
	b.WriteString(`<script type="module">`)
	b.Write(code)
	b.WriteString(`</script>`)
	return b.String()
}
