// Package errors provides the typed errors shared by appupdate packages.
//
// This package consolidates error handling into a single location:
//   - ExitError: Command exit with a specific exit code
//   - PartialSuccessError: Some records were updated, some failed
//   - TimeoutError: An external invocation exceeded its time limit
//   - MalformedRecordError: A record lacks the identity needed to update it
//
// Error Checking:
//
// Use the Is* functions to check error types:
//
//	if exitErr, ok := errors.IsExitError(err); ok {
//	    os.Exit(exitErr.Code)
//	}
//
// Exit Codes:
//
// Standard exit codes are defined for scripting integration:
//   - ExitSuccess (0): All operations completed successfully
//   - ExitPartialFailure (1): Some records failed
//   - ExitFailure (2): All records failed or a critical error occurred
//   - ExitConfigError (3): Configuration or preflight error
//   - ExitCancelled (130): The batch was stopped before it finished
package errors
