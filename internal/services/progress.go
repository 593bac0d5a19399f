package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/year-bingo/tracker/internal/models"
)

var (
	ErrProgressNotFound   = errors.New("progress not found")
	ErrCellDetailNotFound = errors.New("cell detail not found")
	ErrInvalidCellIndex   = errors.New("cell index out of range")
)

type ProgressServiceInterface interface {
	Get(ctx context.Context, userID string) (*models.Progress, error)
	Merge(ctx context.Context, userID string, patch models.ProgressPatch) (*models.Progress, error)
	MarkRandomized(ctx context.Context, userID string) (*models.Progress, error)
	Reset(ctx context.Context, userID string) (*models.Progress, error)
	GetCell(ctx context.Context, userID string, index int) (*models.CellDetail, error)
	PutCell(ctx context.Context, userID string, index int, detail models.CellDetail) (*models.CellDetail, error)
	DeleteCell(ctx context.Context, userID string, index int) error
}

type ProgressService struct {
	db DBConn
}

func NewProgressService(db DBConn) *ProgressService {
	return &ProgressService{db: db}
}

func (s *ProgressService) Get(ctx context.Context, userID string) (*models.Progress, error) {
	progress, exists, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProgressNotFound
	}
	return progress, nil
}

// Merge applies a shallow top-level merge: only fields present in the
// patch overwrite stored values. A present cellDetails replaces the
// whole stored mapping; there is no per-key merge at this level.
func (s *ProgressService) Merge(ctx context.Context, userID string, patch models.ProgressPatch) (*models.Progress, error) {
	progress, _, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.MarkedCells != nil {
		progress.MarkedCells = models.DedupeCells(*patch.MarkedCells)
	}
	if patch.CellDetails != nil {
		progress.CellDetails = normalizeDetails(*patch.CellDetails)
	}
	if patch.Randomized != nil {
		progress.Randomized = *patch.Randomized
	}

	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) MarkRandomized(ctx context.Context, userID string) (*models.Progress, error) {
	progress, _, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress.Randomized = true
	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// Reset clears the marked-cell set and nothing else. Unlike every other
// mutating path it never creates a row: resetting a user that has no
// progress just returns the default empty shape.
func (s *ProgressService) Reset(ctx context.Context, userID string) (*models.Progress, error) {
	progress, exists, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return progress, nil
	}

	progress.MarkedCells = []int{}
	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) GetCell(ctx context.Context, userID string, index int) (*models.CellDetail, error) {
	if !models.IsValidCellIndex(index) {
		return nil, ErrInvalidCellIndex
	}

	progress, exists, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProgressNotFound
	}

	detail, ok := progress.CellDetails[index]
	if !ok {
		return nil, ErrCellDetailNotFound
	}
	return &detail, nil
}

// PutCell replaces the CellDetail stored at index wholesale. Sub-fields
// missing from the payload end up as their zero defaults, never as the
// previously stored values.
func (s *ProgressService) PutCell(ctx context.Context, userID string, index int, detail models.CellDetail) (*models.CellDetail, error) {
	if !models.IsValidCellIndex(index) {
		return nil, ErrInvalidCellIndex
	}

	progress, _, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	if detail.Photos == nil {
		detail.Photos = []string{}
	}
	progress.CellDetails[index] = detail

	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}
	return &detail, nil
}

// DeleteCell removes one key from the mapping. A missing key is a
// silent no-op, though the write-back (and timestamp refresh) still
// happens like on every mutating path.
func (s *ProgressService) DeleteCell(ctx context.Context, userID string, index int) error {
	if !models.IsValidCellIndex(index) {
		return ErrInvalidCellIndex
	}

	progress, _, err := s.getOrDefault(ctx, userID)
	if err != nil {
		return err
	}

	delete(progress.CellDetails, index)
	return s.save(ctx, progress)
}

// getOrDefault is the single create-if-missing policy point: it returns
// the stored progress, or an owned in-memory default when no row exists
// yet. Callers mutate the result and write it back through save, which
// upserts. The check-then-insert window between two first-time writers
// for the same user is accepted; last commit wins.
func (s *ProgressService) getOrDefault(ctx context.Context, userID string) (*models.Progress, bool, error) {
	var (
		markedJSON  []byte
		detailsJSON []byte
		randomized  bool
		updatedAt   time.Time
	)
	err := s.db.QueryRow(ctx,
		"SELECT marked_cells, cell_details, randomized, updated_at FROM progress WHERE user_id = $1",
		userID,
	).Scan(&markedJSON, &detailsJSON, &randomized, &updatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultProgress(userID), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting progress: %w", err)
	}

	progress := models.DefaultProgress(userID)
	progress.Randomized = randomized
	progress.UpdatedAt = updatedAt
	if len(markedJSON) > 0 {
		if err := json.Unmarshal(markedJSON, &progress.MarkedCells); err != nil {
			return nil, false, fmt.Errorf("decoding marked cells: %w", err)
		}
	}
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &progress.CellDetails); err != nil {
			return nil, false, fmt.Errorf("decoding cell details: %w", err)
		}
	}

	return progress, true, nil
}

func (s *ProgressService) save(ctx context.Context, progress *models.Progress) error {
	markedJSON, err := json.Marshal(progress.MarkedCells)
	if err != nil {
		return fmt.Errorf("encoding marked cells: %w", err)
	}
	detailsJSON, err := json.Marshal(progress.CellDetails)
	if err != nil {
		return fmt.Errorf("encoding cell details: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO progress (user_id, marked_cells, cell_details, randomized, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id)
		 DO UPDATE SET marked_cells = EXCLUDED.marked_cells,
		               cell_details = EXCLUDED.cell_details,
		               randomized = EXCLUDED.randomized,
		               updated_at = NOW()
		 RETURNING updated_at`,
		progress.UserID, markedJSON, detailsJSON, progress.Randomized,
	).Scan(&progress.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}

	return nil
}

func normalizeDetails(details map[int]models.CellDetail) map[int]models.CellDetail {
	out := make(map[int]models.CellDetail, len(details))
	for index, detail := range details {
		if detail.Photos == nil {
			detail.Photos = []string{}
		}
		out[index] = detail
	}
	return out
}
