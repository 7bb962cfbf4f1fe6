/*
Package catalog holds the read-only driver catalog.

Records come from a Source (static, file or remote), are normalized once on
first use and are then served lock-free. Markup in free text is stripped, the
weekly availability always carries the seven canonical day keys, and records
breaking an invariant reject the whole load, leaving the catalog empty.

	store := catalog.NewStore(catalog.FileSource{Path: "data/drivers.json"}, logger)
	drivers := store.Filter(ctx, catalog.CityContains("san"), catalog.VehicleTypeContains("suv"))
*/
package catalog
