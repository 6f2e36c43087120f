// Package exporter writes collection query results as CSV.
//
// A listing has one line per pickup (date, kg) in the order of the
// Result, newest first. Unparseable masses are written as empty cells.
// Listings start with a UTF-8 BOM by default so spreadsheet applications
// detect the encoding of the Slovak column names.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteListing(rw, result, exporter.DefaultWriteOptions())
package exporter
