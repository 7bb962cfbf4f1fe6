package catalog

import "strings"

// Predicate reports whether a driver matches a criterion.
type Predicate func(Driver) bool

// FieldContains matches when the field extracted by get contains needle,
// ignoring case. An empty needle matches everything.
func FieldContains(get func(Driver) string, needle string) Predicate {
	needle = strings.ToLower(needle)
	return func(d Driver) bool {
		return strings.Contains(strings.ToLower(get(d)), needle)
	}
}

// FieldEquals matches when the extracted field equals value, ignoring case.
func FieldEquals(get func(Driver) string, value string) Predicate {
	return func(d Driver) bool {
		return strings.EqualFold(get(d), value)
	}
}

// CityContains matches the service area city by substring.
func CityContains(city string) Predicate {
	return FieldContains(func(d Driver) string { return d.ServiceArea.City }, city)
}

// VehicleTypeContains matches the vehicle type by substring.
func VehicleTypeContains(vehicleType string) Predicate {
	return FieldContains(func(d Driver) string { return d.Vehicle.Type }, vehicleType)
}

// All combines predicates with logical AND. No predicates matches everything.
func All(preds ...Predicate) Predicate {
	return func(d Driver) bool {
		for _, p := range preds {
			if p != nil && !p(d) {
				return false
			}
		}
		return true
	}
}
