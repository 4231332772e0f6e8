package ledger

import (
	"sort"
	"time"
)

// ReconcileResult is the outcome of merging a freshly fetched batch against
// the persisted record set.
type ReconcileResult struct {
	// Upserts carries every fresh record with its derived fields recomputed.
	// Local-only fields are never part of the upsert write set; the
	// persistence layer preserves them for rows that already exist.
	Upserts []Invoice

	// DeleteIDs lists invoice IDs present in the store but absent from the
	// fresh batch, meaning the invoice has been paid off upstream.
	DeleteIDs []int64
}

// Reconcile merges a freshly fetched batch of invoices against the existing
// persisted set. It is a pure transformation: the orchestrator performs the
// actual writes.
//
// Every fresh record becomes an upsert candidate with derived fields
// recomputed against asOf. Records that disappeared upstream are scheduled
// for deletion, unless bootstrap is set: during the one-time migration state
// the store's rows predate the external-ID scheme and absence cannot be
// trusted, so deletes are suppressed entirely.
func Reconcile(existing, fresh []Invoice, asOf time.Time, bootstrap bool) ReconcileResult {
	upserts := make([]Invoice, len(fresh))
	freshIDs := make(map[int64]struct{}, len(fresh))
	for i, inv := range fresh {
		inv.ApplyAging(asOf)
		upserts[i] = inv
		freshIDs[inv.InvoiceID] = struct{}{}
	}

	var deleteIDs []int64
	if !bootstrap {
		for _, inv := range existing {
			if _, ok := freshIDs[inv.InvoiceID]; !ok {
				deleteIDs = append(deleteIDs, inv.InvoiceID)
			}
		}
		sort.Slice(deleteIDs, func(i, j int) bool { return deleteIDs[i] < deleteIDs[j] })
	}

	return ReconcileResult{Upserts: upserts, DeleteIDs: deleteIDs}
}
