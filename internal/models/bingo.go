package models

import (
	"time"
)

const (
	// CardItems is the fixed number of items on a card. Index 0-23.
	CardItems = 24
	// FreeSpaceIndex is the conventional free space. It is never tracked
	// as an activity even when a detail is stored for it.
	FreeSpaceIndex = 12
)

func IsValidCellIndex(index int) bool {
	return index >= 0 && index < CardItems
}

// BingoData holds one user's card: exactly 24 items and a year.
// UserName is a denormalized copy of User.Name, taken at creation or
// replace time. It is never re-synced; users are never renamed.
type BingoData struct {
	UserName string   `json:"userName"`
	Items    []string `json:"items"`
	Year     int      `json:"year"`
}

type ReplaceBingoDataParams struct {
	UserName string   `json:"userName"`
	Items    []string `json:"items"`
	Year     int      `json:"year"`
}

// CellDetail is the photos/date/notes record attached to a completed cell.
// It has no identity of its own and is always replaced wholesale.
type CellDetail struct {
	Photos []string `json:"photos"`
	Date   string   `json:"date"`
	Notes  string   `json:"notes"`
}

// Progress tracks one user's card state. CellDetails is keyed by cell
// index; encoding/json renders int keys as JSON object strings, which
// matches the stored wire format.
type Progress struct {
	UserID      string             `json:"-"`
	MarkedCells []int              `json:"markedCells"`
	CellDetails map[int]CellDetail `json:"cellDetails"`
	Randomized  bool               `json:"randomized"`
	UpdatedAt   time.Time          `json:"updatedAt,omitzero"`
}

// DefaultProgress returns the shape every user starts with.
func DefaultProgress(userID string) *Progress {
	return &Progress{
		UserID:      userID,
		MarkedCells: []int{},
		CellDetails: map[int]CellDetail{},
		Randomized:  false,
	}
}

// ProgressPatch is a partial top-level update. Nil fields are left
// untouched; a non-nil CellDetails replaces the whole stored mapping.
type ProgressPatch struct {
	MarkedCells *[]int              `json:"markedCells"`
	CellDetails *map[int]CellDetail `json:"cellDetails"`
	Randomized  *bool               `json:"randomized"`
}

// DedupeCells returns cells with duplicates removed, preserving first
// occurrence order. Marked cells are a set; duplicates carry no meaning.
func DedupeCells(cells []int) []int {
	seen := make(map[int]struct{}, len(cells))
	out := make([]int, 0, len(cells))
	for _, c := range cells {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
