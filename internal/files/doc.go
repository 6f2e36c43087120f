// Package files resolves the configured data source path to a concrete
// spreadsheet or CSV export.
//
// A path naming a file is used as is. A path naming a directory resolves to
// the most recently modified supported export inside it, so operators can
// drop dated exports into one folder:
//
//	d := files.NewDiscovery(logger)
//	path, err := d.Resolve("/srv/zvozy")
//	// path == "/srv/zvozy/zvozy-2024-03.xlsx"
package files
