// Package services is the business layer between HTTP handlers and the
// collection core. Services own the dataset cache, attach logging, metrics
// and spans, and return core errors unchanged so handlers can map them.
package services
