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
	ErrUserNotFound     = errors.New("user not found")
	ErrMissingUserName  = errors.New("userName is required")
	ErrMissingYear      = errors.New("year is required")
	ErrInvalidItemCount = errors.New("items must contain exactly 24 entries")
)

type UserServiceInterface interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, *models.BingoData, *models.Progress, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name, created_at FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// Create inserts the user together with its bingo data and an empty
// progress row in one transaction so a failure cannot leave orphans.
func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, *models.BingoData, *models.Progress, error) {
	if params.UserName == "" {
		return nil, nil, nil, ErrMissingUserName
	}
	if params.Year == 0 {
		return nil, nil, nil, ErrMissingYear
	}
	if len(params.Items) != models.CardItems {
		return nil, nil, nil, ErrInvalidItemCount
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        models.NewUserID(now),
		Name:      params.UserName,
		CreatedAt: now,
	}

	itemsJSON, err := json.Marshal(params.Items)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encoding items: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		"INSERT INTO users (id, name, created_at) VALUES ($1, $2, $3)",
		user.ID, user.Name, user.CreatedAt,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("inserting user: %w", err)
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO bingo_data (user_id, items, year, user_name) VALUES ($1, $2, $3, $4)",
		user.ID, itemsJSON, params.Year, params.UserName,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("inserting bingo data: %w", err)
	}

	progress := models.DefaultProgress(user.ID)
	err = tx.QueryRow(ctx,
		`INSERT INTO progress (user_id, marked_cells, cell_details, randomized, updated_at)
		 VALUES ($1, '[]', '{}', false, $2)
		 RETURNING updated_at`,
		user.ID, now,
	).Scan(&progress.UpdatedAt)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("inserting progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("committing user creation: %w", err)
	}

	bingoData := &models.BingoData{
		UserName: params.UserName,
		Items:    params.Items,
		Year:     params.Year,
	}
	return user, bingoData, progress, nil
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		"SELECT id, name, created_at FROM users WHERE id = $1",
		userID,
	).Scan(&user.ID, &user.Name, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}

	return user, nil
}

// Delete removes the user row; bingo_data and progress go with it via
// ON DELETE CASCADE.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	result, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
