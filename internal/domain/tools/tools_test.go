package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() *catalog.Store {
	return catalog.NewStore(catalog.StaticSource{
		{
			ID: "driver-001", Name: "Marcus Johnson", Rating: 4.9, TotalRides: 1247, YearsExperience: 8,
			Bio: "Bay Area expert.", HourlyRate: 45,
			Vehicle:     catalog.Vehicle{Type: "Sedan", Model: "Toyota Camry 2022", Color: "Black", LicensePlate: "7ABC123"},
			ServiceArea: catalog.ServiceArea{City: "San Francisco", State: "CA", Radius: 25},
			Specialties: []string{"Airport Transfers", "Business Travel"},
			Languages:   []string{"English", "Spanish"},
			Availability: catalog.Availability{
				"monday": {"8:00 AM - 6:00 PM"},
				"friday": {"8:00 AM - 12:00 PM", "2:00 PM - 8:00 PM"},
			},
		},
		{ID: "driver-002", Name: "Sarah Chen", Rating: 4.8, HourlyRate: 55,
			Vehicle: catalog.Vehicle{Type: "SUV"}, ServiceArea: catalog.ServiceArea{City: "Oakland"}},
		{ID: "driver-003", Name: "James Rodriguez", Rating: 4.7, HourlyRate: 40,
			Vehicle: catalog.Vehicle{Type: "Van"}, ServiceArea: catalog.ServiceArea{City: "San Jose"}},
		{ID: "driver-004", Name: "Elena Petrova", Rating: 5, HourlyRate: 85,
			Vehicle: catalog.Vehicle{Type: "Luxury"}, ServiceArea: catalog.ServiceArea{City: "San Francisco"}},
		{ID: "driver-005", Name: "David Kim", Rating: 4.6, HourlyRate: 38,
			Vehicle: catalog.Vehicle{Type: "Sedan"}, ServiceArea: catalog.ServiceArea{City: "Palo Alto"}},
	}, nil)
}

func ids(res *Result) []string {
	if res.StructuredContent == nil {
		return nil
	}
	out := make([]string, len(res.StructuredContent.Drivers))
	for i, d := range res.StructuredContent.Drivers {
		out[i] = d.ID
	}
	return out
}

func TestListOrderAndSchemas(t *testing.T) {
	r := NewDriverRegistry(testStore())

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "search_drivers", list[0].Name)
	assert.Equal(t, "list_all_drivers", list[1].Name)
	assert.Equal(t, "get_driver_details", list[2].Name)

	assert.Equal(t, WidgetURI, list[0].Meta["openai/outputTemplate"])
	assert.Nil(t, list[1].Meta)
	assert.Equal(t, []string{"driverId"}, list[2].InputSchema.Required)

	data, err := json.Marshal(list[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"properties":{}`)
	assert.NotContains(t, string(data), "_meta")
	assert.NotContains(t, string(data), "required")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(listAllDrivers{}))
	assert.Error(t, r.Register(listAllDrivers{}))
}

func TestCallUnknownTool(t *testing.T) {
	r := NewDriverRegistry(testStore())

	_, err := r.Call(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Equal(t, "Unknown tool: nope", err.Error())
}

func TestSearchDrivers(t *testing.T) {
	r := NewDriverRegistry(testStore())
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{"no filters caps at three", nil, []string{"driver-001", "driver-002", "driver-003"}},
		{"city", map[string]any{"city": "san francisco"}, []string{"driver-001", "driver-004"}},
		{"vehicle", map[string]any{"vehicleType": "SEDAN"}, []string{"driver-001", "driver-005"}},
		{"both", map[string]any{"city": "San", "vehicleType": "van"}, []string{"driver-003"}},
		{"empty strings ignored", map[string]any{"city": "", "vehicleType": ""}, []string{"driver-001", "driver-002", "driver-003"}},
		{"null ignored", map[string]any{"city": nil}, []string{"driver-001", "driver-002", "driver-003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Call(ctx, "search_drivers", tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res))
			require.Len(t, res.Content, 1)
			assert.Equal(t, "text", res.Content[0].Type)
			assert.True(t, strings.HasSuffix(res.Content[0].Text, searchFooter))
			assert.Equal(t, len(tt.want)-1, strings.Count(res.Content[0].Text, "\n---\n"))
		})
	}
}

func TestSearchDriversNoMatch(t *testing.T) {
	r := NewDriverRegistry(testStore())

	res, err := r.Call(context.Background(), "search_drivers", map[string]any{"city": "Tokyo"})
	require.NoError(t, err)
	assert.Nil(t, res.StructuredContent)
	assert.Equal(t, noMatchesText, res.Content[0].Text)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "structuredContent")
}

func TestSearchDriversNonStringArgument(t *testing.T) {
	r := NewDriverRegistry(testStore())

	_, err := r.Call(context.Background(), "search_drivers", map[string]any{"city": 42.0})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearchDriversProfileText(t *testing.T) {
	r := NewDriverRegistry(testStore())

	res, err := r.Call(context.Background(), "search_drivers", map[string]any{"vehicleType": "camry"})
	require.NoError(t, err)
	assert.Nil(t, res.StructuredContent, "model is not searched")

	res, err = r.Call(context.Background(), "search_drivers", map[string]any{"city": "Francisco", "vehicleType": "sedan"})
	require.NoError(t, err)
	want := "\n# 🚗 Marcus Johnson\n\n" +
		"⭐ **4.9/5.0** (1247 rides) | 8 years experience\n\n" +
		"**Vehicle:** Toyota Camry 2022 (Black Sedan)\n" +
		"**Service Area:** San Francisco, CA (25 mile radius)\n" +
		"**Hourly Rate:** $45/hour\n\n" +
		"**Specialties:** Airport Transfers, Business Travel\n" +
		"**Languages:** English, Spanish\n\n" +
		"Bay Area expert.\n" +
		"\n\n" + searchFooter
	assert.Equal(t, want, res.Content[0].Text)
}

func TestListAllDrivers(t *testing.T) {
	r := NewDriverRegistry(testStore())

	res, err := r.Call(context.Background(), "list_all_drivers", map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, res.StructuredContent)

	text := res.Content[0].Text
	assert.True(t, strings.HasPrefix(text, "\n# Available Drivers\n\n\n## Marcus Johnson\n- **ID:** driver-001\n- **Rating:** 4.9/5.0\n"))
	assert.Contains(t, text, "- **Rating:** 5/5.0\n")
	assert.Equal(t, 5, strings.Count(text, "\n## "))
	assert.True(t, strings.HasSuffix(text, "Use `search_drivers` to get detailed profiles and availability.\n"))
}

func TestGetDriverDetails(t *testing.T) {
	r := NewDriverRegistry(testStore())

	res, err := r.Call(context.Background(), "get_driver_details", map[string]any{"driverId": "driver-001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"driver-001"}, ids(res))

	text := res.Content[0].Text
	assert.Contains(t, text, "**License Plate:** 7ABC123\n")
	assert.Contains(t, text, "## About\nBay Area expert.\n\n## Weekly Availability\n")
	assert.True(t, strings.HasSuffix(text,
		"**Monday:** 8:00 AM - 6:00 PM\n"+
			"**Tuesday:** Not available\n"+
			"**Wednesday:** Not available\n"+
			"**Thursday:** Not available\n"+
			"**Friday:** 8:00 AM - 12:00 PM, 2:00 PM - 8:00 PM\n"+
			"**Saturday:** Not available\n"+
			"**Sunday:** Not available\n"))
}

func TestGetDriverDetailsNotFound(t *testing.T) {
	r := NewDriverRegistry(testStore())

	for _, args := range []map[string]any{
		{"driverId": "driver-999"},
		{"driverId": "DRIVER-001"},
		{},
	} {
		res, err := r.Call(context.Background(), "get_driver_details", args)
		require.NoError(t, err)
		assert.Nil(t, res.StructuredContent)
		assert.Equal(t, notFoundText, res.Content[0].Text)
	}

	_, err := r.Call(context.Background(), "get_driver_details", map[string]any{"driverId": true})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNum(t *testing.T) {
	assert.Equal(t, "5", num(5))
	assert.Equal(t, "4.85", num(4.85))
	assert.Equal(t, "0", num(0))
	assert.Equal(t, "12.5", num(12.5))
}
