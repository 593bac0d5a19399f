package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/year-bingo/tracker/internal/models"
)

var ErrBingoDataNotFound = errors.New("bingo data not found")

type BingoDataServiceInterface interface {
	Get(ctx context.Context, userID string) (*models.BingoData, error)
	Replace(ctx context.Context, userID string, params models.ReplaceBingoDataParams) (*models.BingoData, error)
}

type BingoDataService struct {
	db DBConn
}

func NewBingoDataService(db DBConn) *BingoDataService {
	return &BingoDataService{db: db}
}

func (s *BingoDataService) Get(ctx context.Context, userID string) (*models.BingoData, error) {
	data := &models.BingoData{}
	var itemsJSON []byte
	err := s.db.QueryRow(ctx,
		"SELECT items, year, user_name FROM bingo_data WHERE user_id = $1",
		userID,
	).Scan(&itemsJSON, &data.Year, &data.UserName)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBingoDataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting bingo data: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &data.Items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	return data, nil
}

// Replace overwrites the full bingo data row. There is no partial merge
// here; callers must send items, year, and userName together. The
// user_name copy is refreshed from the payload, not from the users table.
func (s *BingoDataService) Replace(ctx context.Context, userID string, params models.ReplaceBingoDataParams) (*models.BingoData, error) {
	if params.UserName == "" {
		return nil, ErrMissingUserName
	}
	if params.Year == 0 {
		return nil, ErrMissingYear
	}
	if len(params.Items) != models.CardItems {
		return nil, ErrInvalidItemCount
	}

	itemsJSON, err := json.Marshal(params.Items)
	if err != nil {
		return nil, fmt.Errorf("encoding items: %w", err)
	}

	result, err := s.db.Exec(ctx,
		"UPDATE bingo_data SET items = $1, year = $2, user_name = $3 WHERE user_id = $4",
		itemsJSON, params.Year, params.UserName, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("replacing bingo data: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrBingoDataNotFound
	}

	return &models.BingoData{
		UserName: params.UserName,
		Items:    params.Items,
		Year:     params.Year,
	}, nil
}
