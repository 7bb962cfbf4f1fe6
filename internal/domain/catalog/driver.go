package catalog

import (
	"bytes"
	"encoding/json"
	"time"
)

// Driver is one bookable driver profile.
type Driver struct {
	ID              string       `json:"id" yaml:"id" toml:"id"`
	Name            string       `json:"name" yaml:"name" toml:"name"`
	Photo           string       `json:"photo" yaml:"photo" toml:"photo"`
	Rating          float64      `json:"rating" yaml:"rating" toml:"rating"`
	TotalRides      int          `json:"totalRides" yaml:"totalRides" toml:"totalRides"`
	YearsExperience int          `json:"yearsExperience" yaml:"yearsExperience" toml:"yearsExperience"`
	Bio             string       `json:"bio" yaml:"bio" toml:"bio"`
	HourlyRate      float64      `json:"hourlyRate" yaml:"hourlyRate" toml:"hourlyRate"`
	Vehicle         Vehicle      `json:"vehicle" yaml:"vehicle" toml:"vehicle"`
	ServiceArea     ServiceArea  `json:"serviceArea" yaml:"serviceArea" toml:"serviceArea"`
	Specialties     []string     `json:"specialties" yaml:"specialties" toml:"specialties"`
	Languages       []string     `json:"languages" yaml:"languages" toml:"languages"`
	Availability    Availability `json:"availability" yaml:"availability" toml:"availability"`
	Contact         *Contact     `json:"contact,omitempty" yaml:"contact,omitempty" toml:"contact,omitempty"`
}

// Vehicle describes the car a driver operates.
type Vehicle struct {
	Type         string `json:"type" yaml:"type" toml:"type"`
	Model        string `json:"model" yaml:"model" toml:"model"`
	Color        string `json:"color" yaml:"color" toml:"color"`
	LicensePlate string `json:"licensePlate" yaml:"licensePlate" toml:"licensePlate"`
}

// ServiceArea is where a driver accepts rides. Radius is in miles.
type ServiceArea struct {
	City   string  `json:"city" yaml:"city" toml:"city"`
	State  string  `json:"state" yaml:"state" toml:"state"`
	Radius float64 `json:"radius" yaml:"radius" toml:"radius"`
}

// Contact holds details the widget can disclose locally without a host round-trip.
type Contact struct {
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty" toml:"phone,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty"`
}

// Summary is the compact listing form of a driver.
type Summary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	VehicleType string  `json:"vehicleType"`
	City        string  `json:"city"`
	HourlyRate  float64 `json:"hourlyRate"`
}

// Summarize returns the listing form of d.
func (d Driver) Summarize() Summary {
	return Summary{
		ID:          d.ID,
		Name:        d.Name,
		Rating:      d.Rating,
		VehicleType: d.Vehicle.Type,
		City:        d.ServiceArea.City,
		HourlyRate:  d.HourlyRate,
	}
}

// Days lists the canonical availability keys in display order.
var Days = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayOf returns the availability key for t's weekday. The caller picks the
// time zone by converting t first; host locale never enters into it.
func DayOf(t time.Time) string {
	// time.Weekday counts from Sunday.
	return Days[(int(t.Weekday())+6)%7]
}

// Availability maps a lowercase day name to that day's time slots.
// After loading it holds exactly the keys in Days.
type Availability map[string][]string

// Slots returns the slots for day, never nil.
func (a Availability) Slots(day string) []string {
	if s := a[day]; s != nil {
		return s
	}
	return []string{}
}

// MarshalJSON writes days in canonical order rather than Go's sorted map order.
func (a Availability) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, day := range Days {
		slots, ok := a[day]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, _ := json.Marshal(day)
		buf.Write(key)
		buf.WriteByte(':')
		if slots == nil {
			slots = []string{}
		}
		val, err := json.Marshal(slots)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
