package tools

import (
	"context"

	"github.com/GriffinCanCode/driverbook/internal/domain/catalog"
)

// WidgetURI is the output template advertised by tools that return records.
const WidgetURI = "ui://widget/driver-card.html"

// searchLimit caps how many drivers search_drivers returns.
const searchLimit = 3

// Tool metadata keys understood by the agent host.
const (
	metaOutputTemplate = "openai/outputTemplate"
	metaInvoking       = "openai/toolInvocation/invoking"
	metaInvoked        = "openai/toolInvocation/invoked"
)

// NewDriverRegistry returns a registry holding the three driver tools in
// their advertised order.
func NewDriverRegistry(store *catalog.Store) *Registry {
	r := NewRegistry()
	for _, t := range []Tool{
		searchDrivers{store: store},
		listAllDrivers{store: store},
		getDriverDetails{store: store},
	} {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

type searchDrivers struct{ store *catalog.Store }

func (searchDrivers) Descriptor() Descriptor {
	return Descriptor{
		Name:        "search_drivers",
		Title:       "Search Drivers",
		Description: "Search for available drivers in your area. Use when user asks to: find drivers, book a driver, need transportation, search for rides, or asks about available drivers. Returns driver profiles with ratings, vehicle info, and availability.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"city": {
					Type:        "string",
					Description: `Optional: Filter by city (e.g., "San Francisco")`,
				},
				"vehicleType": {
					Type:        "string",
					Description: `Optional: Filter by vehicle type (e.g., "Sedan", "SUV", "Van", "Luxury")`,
				},
			},
		},
		Meta: map[string]string{
			metaOutputTemplate: WidgetURI,
			metaInvoking:       "Searching for drivers...",
			metaInvoked:        "Driver profiles displayed",
		},
	}
}

func (t searchDrivers) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	city, err := optionalString(args, "city")
	if err != nil {
		return nil, err
	}
	vehicleType, err := optionalString(args, "vehicleType")
	if err != nil {
		return nil, err
	}

	var preds []catalog.Predicate
	if city != "" {
		preds = append(preds, catalog.CityContains(city))
	}
	if vehicleType != "" {
		preds = append(preds, catalog.VehicleTypeContains(vehicleType))
	}

	matches := t.store.Filter(ctx, preds...)
	if len(matches) > searchLimit {
		matches = matches[:searchLimit]
	}
	if len(matches) == 0 {
		return TextResult(noMatchesText), nil
	}

	res := TextResult(formatSearch(matches))
	res.StructuredContent = &Structured{Drivers: matches}
	return res, nil
}

type listAllDrivers struct{ store *catalog.Store }

func (listAllDrivers) Descriptor() Descriptor {
	return Descriptor{
		Name:        "list_all_drivers",
		Description: "List all available drivers with their basic information including ratings, vehicle types, and rates.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
		},
	}
}

func (t listAllDrivers) Execute(ctx context.Context, _ map[string]any) (*Result, error) {
	return TextResult(formatList(t.store.Summaries(ctx))), nil
}

type getDriverDetails struct{ store *catalog.Store }

func (getDriverDetails) Descriptor() Descriptor {
	return Descriptor{
		Name:        "get_driver_details",
		Description: "Get detailed information about a specific driver including full availability schedule and complete profile.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"driverId": {
					Type:        "string",
					Description: `The driver ID (e.g., "driver-001")`,
				},
			},
			Required: []string{"driverId"},
		},
		Meta: map[string]string{
			metaOutputTemplate: WidgetURI,
			metaInvoking:       "Loading driver profile...",
			metaInvoked:        "Driver profile displayed",
		},
	}
}

func (t getDriverDetails) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	id, err := optionalString(args, "driverId")
	if err != nil {
		return nil, err
	}

	d, ok := t.store.FindByID(ctx, id)
	if !ok {
		return TextResult(notFoundText), nil
	}

	res := TextResult(formatDetails(*d))
	res.StructuredContent = &Structured{Drivers: []catalog.Driver{*d}}
	return res, nil
}
