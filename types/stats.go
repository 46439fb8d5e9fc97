package types

// ItemFailure records why one archive item did not make it into the judge.
type ItemFailure struct {
	// Ordinal is the item's 1-based position in the document.
	Ordinal int

	// Title is the item's title when it could be extracted, otherwise "".
	Title string

	// Reason is a short human-readable explanation.
	Reason string
}

// ImportStats aggregates the outcome of one batch run. It is read-only once
// the run completes.
type ImportStats struct {
	// Total is the number of items the document declared.
	Total int

	// Succeeded counts items fully delivered to the target system.
	Succeeded int

	// Failed counts items that reached delivery but were rejected, or
	// whose test data could not be materialized.
	Failed int

	// Skipped counts items an earlier stage rejected, so they never
	// reached delivery.
	Skipped int

	// Failures lists every non-success item with its reason, in document
	// order. Skipped and failed items both appear here.
	Failures []ItemFailure
}
