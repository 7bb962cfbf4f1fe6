package catalog

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrInvalidRecord marks a record that breaks a catalog invariant.
var ErrInvalidRecord = errors.New("invalid driver record")

// normalizer strips markup from free text and enforces record invariants.
type normalizer struct {
	policy *bluemonday.Policy
}

func newNormalizer() *normalizer {
	return &normalizer{policy: bluemonday.StrictPolicy()}
}

// normalize validates drivers in place and returns them. Any violation
// rejects the whole set.
func (n *normalizer) normalize(drivers []Driver) ([]Driver, error) {
	seen := make(map[string]int, len(drivers))
	for i := range drivers {
		d := &drivers[i]
		if err := n.record(d); err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, d.ID, err)
		}
		if prev, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("record %d: id %q already used by record %d: %w", i, d.ID, prev, ErrInvalidRecord)
		}
		seen[d.ID] = i
	}
	return drivers, nil
}

func (n *normalizer) record(d *Driver) error {
	d.ID = strings.TrimSpace(d.ID)
	if d.ID == "" {
		return fmt.Errorf("missing id: %w", ErrInvalidRecord)
	}

	switch {
	case d.Rating < 0 || d.Rating > 5:
		return fmt.Errorf("rating %v outside [0,5]: %w", d.Rating, ErrInvalidRecord)
	case d.HourlyRate < 0:
		return fmt.Errorf("negative hourlyRate: %w", ErrInvalidRecord)
	case d.TotalRides < 0:
		return fmt.Errorf("negative totalRides: %w", ErrInvalidRecord)
	case d.YearsExperience < 0:
		return fmt.Errorf("negative yearsExperience: %w", ErrInvalidRecord)
	case d.ServiceArea.Radius < 0:
		return fmt.Errorf("negative serviceArea.radius: %w", ErrInvalidRecord)
	}

	d.Name = n.text(d.Name)
	d.Bio = n.text(d.Bio)
	d.Vehicle = Vehicle{
		Type:         n.text(d.Vehicle.Type),
		Model:        n.text(d.Vehicle.Model),
		Color:        n.text(d.Vehicle.Color),
		LicensePlate: n.text(d.Vehicle.LicensePlate),
	}
	d.ServiceArea.City = n.text(d.ServiceArea.City)
	d.ServiceArea.State = n.text(d.ServiceArea.State)
	d.Specialties = n.list(d.Specialties)
	d.Languages = n.list(d.Languages)
	d.Photo = photoURL(d.Photo)
	if d.Contact != nil {
		d.Contact.Phone = n.text(d.Contact.Phone)
		d.Contact.Email = n.text(d.Contact.Email)
	}

	avail, err := canonicalAvailability(d.Availability)
	if err != nil {
		return err
	}
	d.Availability = avail
	return nil
}

// text removes any markup. The policy escapes entities, so they are decoded
// again to keep plain text plain; templates escape on output.
func (n *normalizer) text(s string) string {
	return strings.TrimSpace(html.UnescapeString(n.policy.Sanitize(s)))
}

func (n *normalizer) list(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = n.text(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// photoURL keeps only absolute http(s) URLs.
func photoURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

// canonicalAvailability lowercases day keys, fills missing days with empty
// slot lists and rejects anything that is not a weekday.
func canonicalAvailability(in Availability) (Availability, error) {
	out := make(Availability, len(Days))
	for _, day := range Days {
		out[day] = []string{}
	}
	for key, slots := range in {
		day := strings.ToLower(strings.TrimSpace(key))
		if _, ok := out[day]; !ok {
			return nil, fmt.Errorf("unknown availability day %q: %w", key, ErrInvalidRecord)
		}
		clean := make([]string, 0, len(slots))
		for _, s := range slots {
			if s = strings.TrimSpace(s); s != "" {
				clean = append(clean, s)
			}
		}
		out[day] = clean
	}
	return out, nil
}
