package ledger

import (
	"sort"
	"time"
)

// HistoryKind distinguishes entry types in the merged history view
type HistoryKind string

const (
	HistoryKindNote     HistoryKind = "note"
	HistoryKindFollowUp HistoryKind = "follow_up"
)

// HistoryEntry is one row in an invoice's merged annotation history
type HistoryEntry struct {
	Kind      HistoryKind `json:"kind"`
	At        time.Time   `json:"at"`
	Author    string      `json:"author"`
	Text      string      `json:"text"`
	DueDate   *time.Time  `json:"due_date,omitempty"`
	Completed *bool       `json:"completed,omitempty"`
}

// MergeHistory combines an invoice's notes and follow-ups into a single view
// sorted newest first. Ties preserve the input order within each kind, notes
// before follow-ups.
func MergeHistory(notes []Note, followUps []FollowUp) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(notes)+len(followUps))

	for _, n := range notes {
		entries = append(entries, HistoryEntry{
			Kind:    HistoryKindNote,
			At:      n.CreatedAt,
			Author:  n.Author,
			Text:    n.Text,
			DueDate: n.ActionDate,
		})
	}
	for _, f := range followUps {
		completed := f.Completed
		due := f.DueDate
		entries = append(entries, HistoryEntry{
			Kind:      HistoryKindFollowUp,
			At:        f.CreatedAt,
			Author:    f.Author,
			Text:      f.Text,
			DueDate:   &due,
			Completed: &completed,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.After(entries[j].At)
	})

	return entries
}
