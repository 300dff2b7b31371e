package domain

// DuplicateHandling decides what bulk import does with a task whose id
// already exists locally.
type DuplicateHandling string

const (
	// DuplicateSkip discards the imported record and counts it as skipped
	DuplicateSkip DuplicateHandling = "skip"
	// DuplicateReplace overwrites the local record unconditionally,
	// bypassing the version comparison (import is an explicit user action)
	DuplicateReplace DuplicateHandling = "replace"
)

// ImportResult summarizes a bulk import. Errors are per-record and
// non-fatal; the rest of the batch proceeds.
type ImportResult struct {
	ImportedCount int      `json:"importedCount"`
	SkippedCount  int      `json:"skippedCount"`
	Errors        []string `json:"errors"`
}

// MergeOutcome records how one remote record was reconciled. It is a logged
// result, never an error.
type MergeOutcome string

const (
	MergeInserted    MergeOutcome = "inserted"
	MergeRemoteWins  MergeOutcome = "remote_wins"
	MergeLocalKept   MergeOutcome = "local_kept"
	MergeTombstoned  MergeOutcome = "tombstoned"
)

// PullStats aggregates the outcomes of one pull/merge pass
type PullStats struct {
	Fetched    int `json:"fetched"`
	Inserted   int `json:"inserted"`
	RemoteWins int `json:"remoteWins"`
	LocalKept  int `json:"localKept"`
	Removed    int `json:"removed"`
}
