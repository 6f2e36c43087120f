// Package shared groups helpers used across packages. The testutil
// subpackage carries log capture and collection fixtures for tests.
package shared
