package models

// Activity is a derived feed event: one completed, dated, non-free-space
// cell. Computed fresh on every feed request, never persisted.
type Activity struct {
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	Item      string  `json:"item"`
	CellIndex int     `json:"cellIndex"`
	Date      string  `json:"date"`
	Thumbnail *string `json:"thumbnail"`
	HasPhotos bool    `json:"hasPhotos"`
	Notes     string  `json:"notes"`
}
