// Package supervision reports installed applications that appupdate
// cannot update.
//
// A record is unsupported when the package manager cannot act on it:
//   - it was found only in the registry, so winget has no source for it
//   - its installed version is unknown to the manager
//   - it has no manager identifier and its name is ambiguous
//
// # Core Types
//
// UnsupportedTracker collects such records grouped by source and reason:
//
//	tracker := supervision.NewUnsupportedTracker()
//	for _, rec := range records {
//	    if supervision.ShouldTrack(rec) {
//	        tracker.Add(rec, supervision.DeriveReason(rec))
//	    }
//	}
//	for _, msg := range tracker.Messages() {
//	    fmt.Println(msg)
//	}
//
// # Thread Safety
//
// UnsupportedTracker is safe for concurrent use from multiple goroutines.
package supervision
