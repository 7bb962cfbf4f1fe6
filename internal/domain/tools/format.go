package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
)

const (
	noMatchesText = "No drivers found matching your criteria. Try searching with different parameters."
	notFoundText  = "Driver not found. Use `list_all_drivers` to see available drivers."
	searchFooter  = "*Book a professional driver today!* 🚗"
	notAvailable  = "Not available"
)

// num prints a number the shortest way that round-trips, so 5 stays "5" and
// 4.85 stays "4.85".
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func header(b *strings.Builder, d catalog.Driver) {
	fmt.Fprintf(b, "\n# 🚗 %s\n\n", d.Name)
	fmt.Fprintf(b, "⭐ **%s/5.0** (%d rides) | %d years experience\n\n", num(d.Rating), d.TotalRides, d.YearsExperience)
	fmt.Fprintf(b, "**Vehicle:** %s (%s %s)\n", d.Vehicle.Model, d.Vehicle.Color, d.Vehicle.Type)
}

func profileBody(b *strings.Builder, d catalog.Driver) {
	fmt.Fprintf(b, "**Service Area:** %s, %s (%s mile radius)\n", d.ServiceArea.City, d.ServiceArea.State, num(d.ServiceArea.Radius))
	fmt.Fprintf(b, "**Hourly Rate:** $%s/hour\n\n", num(d.HourlyRate))
	fmt.Fprintf(b, "**Specialties:** %s\n", strings.Join(d.Specialties, ", "))
	fmt.Fprintf(b, "**Languages:** %s\n\n", strings.Join(d.Languages, ", "))
}

func formatProfile(d catalog.Driver) string {
	var b strings.Builder
	header(&b, d)
	profileBody(&b, d)
	b.WriteString(d.Bio)
	b.WriteByte('\n')
	return b.String()
}

func formatSearch(drivers []catalog.Driver) string {
	blocks := make([]string, len(drivers))
	for i, d := range drivers {
		blocks[i] = formatProfile(d)
	}
	return strings.Join(blocks, "\n---\n\n") + "\n\n" + searchFooter
}

func formatList(sums []catalog.Summary) string {
	entries := make([]string, len(sums))
	for i, s := range sums {
		entries[i] = fmt.Sprintf("\n## %s\n- **ID:** %s\n- **Rating:** %s/5.0\n- **Vehicle:** %s\n- **Location:** %s\n- **Rate:** $%s/hour\n",
			s.Name, s.ID, num(s.Rating), s.VehicleType, s.City, num(s.HourlyRate))
	}

	var b strings.Builder
	b.WriteString("\n# Available Drivers\n\n")
	b.WriteString(strings.Join(entries, "\n"))
	b.WriteString("\n\nUse `search_drivers` to get detailed profiles and availability.\n")
	return b.String()
}

func formatDetails(d catalog.Driver) string {
	var b strings.Builder
	header(&b, d)
	fmt.Fprintf(&b, "**License Plate:** %s\n", d.Vehicle.LicensePlate)
	profileBody(&b, d)
	fmt.Fprintf(&b, "## About\n%s\n\n", d.Bio)
	b.WriteString("## Weekly Availability\n")

	lines := make([]string, len(catalog.Days))
	for i, day := range catalog.Days {
		slots := d.Availability.Slots(day)
		value := notAvailable
		if len(slots) > 0 {
			value = strings.Join(slots, ", ")
		}
		lines[i] = fmt.Sprintf("**%s:** %s", strings.ToUpper(day[:1])+day[1:], value)
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteByte('\n')
	return b.String()
}
