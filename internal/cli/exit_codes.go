package cli

// Exit codes for the relkit CLI.
// Every failure exits non-zero so the tool composes in scripts and CI.
const (
	// ExitSuccess indicates the workflow completed.
	ExitSuccess = 0

	// ExitFailure indicates any error: bad arguments, a failed
	// precondition, a collaborator failure, or a user abort.
	ExitFailure = 1
)
