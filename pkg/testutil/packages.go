package testutil

import (
	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/packages"
)

// RecordBuilder provides a fluent API for building test records.
type RecordBuilder struct {
	rec packages.Record
}

// NewRecord creates a RecordBuilder with the given name and the winget source.
//
// Parameters:
//   - name: Record display name
//
// Returns:
//   - *RecordBuilder: New builder instance ready for method chaining
func NewRecord(name string) *RecordBuilder {
	return &RecordBuilder{rec: packages.Record{Name: name, Version: constants.VersionUnknown, Source: constants.SourceWinget}}
}

// WithID sets the manager identifier.
func (b *RecordBuilder) WithID(id string) *RecordBuilder {
	b.rec.ID = id
	return b
}

// WithVersion sets the installed version.
func (b *RecordBuilder) WithVersion(v string) *RecordBuilder {
	b.rec.Version = v
	return b
}

// WithAvailable sets the available version.
func (b *RecordBuilder) WithAvailable(v string) *RecordBuilder {
	b.rec.Available = v
	return b
}

// WithSource sets the source; an empty source marks the record unsupported.
func (b *RecordBuilder) WithSource(s string) *RecordBuilder {
	b.rec.Source = s
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() packages.Record {
	return b.rec
}

// OutdatedRecord creates a winget record with an available update.
//
// Parameters:
//   - name: Display name
//   - id: Manager identifier
//   - version: Installed version
//   - available: Available version
//
// Returns:
//   - packages.Record: Record ready for dispatch
func OutdatedRecord(name, id, version, available string) packages.Record {
	return NewRecord(name).WithID(id).WithVersion(version).WithAvailable(available).Build()
}

// Records creates one outdated record per name, with identifiers derived
// from the names.
func Records(names ...string) []packages.Record {
	out := make([]packages.Record, len(names))
	for i, n := range names {
		out[i] = OutdatedRecord(n, "Test."+n, "1.0", "2.0")
	}
	return out
}
