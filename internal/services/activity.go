package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/year-bingo/tracker/internal/logging"
	"github.com/year-bingo/tracker/internal/models"
)

type ActivityServiceInterface interface {
	Feed(ctx context.Context) ([]models.Activity, error)
}

type ActivityService struct {
	db DBConn
}

func NewActivityService(db DBConn) *ActivityService {
	return &ActivityService{db: db}
}

// Feed builds the global completion timeline: one entry per dated,
// non-free-space cell detail across all users that have both a progress
// and a bingo data row. Recomputed in full on every call; nothing is
// cached or persisted.
func (s *ActivityService) Feed(ctx context.Context) ([]models.Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.user_id, b.user_name, b.items, p.cell_details
		FROM progress p
		JOIN bingo_data b ON b.user_id = p.user_id
		WHERE p.cell_details IS NOT NULL AND p.cell_details <> '{}'::jsonb
	`)
	if err != nil {
		return nil, fmt.Errorf("loading activity rows: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		var (
			userID      string
			userName    string
			itemsJSON   []byte
			detailsJSON []byte
		)
		if err := rows.Scan(&userID, &userName, &itemsJSON, &detailsJSON); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}

		var items []string
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return nil, fmt.Errorf("decoding items for %s: %w", userID, err)
		}
		var details map[int]models.CellDetail
		if err := json.Unmarshal(detailsJSON, &details); err != nil {
			return nil, fmt.Errorf("decoding cell details for %s: %w", userID, err)
		}

		activities = append(activities, buildActivities(userID, userName, items, details)...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity rows: %w", err)
	}

	sortActivities(activities)
	return activities, nil
}

func buildActivities(userID, userName string, items []string, details map[int]models.CellDetail) []models.Activity {
	out := make([]models.Activity, 0, len(details))
	for index, detail := range details {
		if index == models.FreeSpaceIndex {
			continue
		}
		if detail.Date == "" {
			continue
		}
		if index < 0 || index >= len(items) {
			// Corrupt row: the stored item list is shorter than the
			// detail index. Skip the entry rather than failing the
			// whole feed for one user's bad data.
			logging.Warn("Skipping activity with out-of-range cell index", map[string]interface{}{
				"user_id": userID,
				"index":   index,
				"items":   len(items),
			})
			continue
		}

		activity := models.Activity{
			UserID:    userID,
			UserName:  userName,
			Item:      items[index],
			CellIndex: index,
			Date:      detail.Date,
			HasPhotos: len(detail.Photos) > 0,
			Notes:     detail.Notes,
		}
		if len(detail.Photos) > 0 {
			thumbnail := detail.Photos[0]
			activity.Thumbnail = &thumbnail
		}
		out = append(out, activity)
	}
	return out
}

// sortActivities orders by date descending, then user id descending.
// The descending id tiebreak is kept as-is for compatibility with the
// existing feed consumers.
func sortActivities(activities []models.Activity) {
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Date != activities[j].Date {
			return activities[i].Date > activities[j].Date
		}
		return activities[i].UserID > activities[j].UserID
	})
}
