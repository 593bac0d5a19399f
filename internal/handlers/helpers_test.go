package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/year-bingo/tracker/internal/models"
)

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d (body %q)", status, rr.Code, rr.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] != message {
		t.Fatalf("expected error %q, got %q", message, body["error"])
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

type mockUserService struct {
	ListFunc    func(ctx context.Context) ([]models.User, error)
	CreateFunc  func(ctx context.Context, params models.CreateUserParams) (*models.User, *models.BingoData, *models.Progress, error)
	GetByIDFunc func(ctx context.Context, userID string) (*models.User, error)
	DeleteFunc  func(ctx context.Context, userID string) error
}

func (m *mockUserService) List(ctx context.Context) ([]models.User, error) {
	return m.ListFunc(ctx)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, *models.BingoData, *models.Progress, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return m.GetByIDFunc(ctx, userID)
}

func (m *mockUserService) Delete(ctx context.Context, userID string) error {
	return m.DeleteFunc(ctx, userID)
}

type mockBingoDataService struct {
	GetFunc     func(ctx context.Context, userID string) (*models.BingoData, error)
	ReplaceFunc func(ctx context.Context, userID string, params models.ReplaceBingoDataParams) (*models.BingoData, error)
}

func (m *mockBingoDataService) Get(ctx context.Context, userID string) (*models.BingoData, error) {
	return m.GetFunc(ctx, userID)
}

func (m *mockBingoDataService) Replace(ctx context.Context, userID string, params models.ReplaceBingoDataParams) (*models.BingoData, error) {
	return m.ReplaceFunc(ctx, userID, params)
}

type mockProgressService struct {
	GetFunc            func(ctx context.Context, userID string) (*models.Progress, error)
	MergeFunc          func(ctx context.Context, userID string, patch models.ProgressPatch) (*models.Progress, error)
	MarkRandomizedFunc func(ctx context.Context, userID string) (*models.Progress, error)
	ResetFunc          func(ctx context.Context, userID string) (*models.Progress, error)
	GetCellFunc        func(ctx context.Context, userID string, index int) (*models.CellDetail, error)
	PutCellFunc        func(ctx context.Context, userID string, index int, detail models.CellDetail) (*models.CellDetail, error)
	DeleteCellFunc     func(ctx context.Context, userID string, index int) error
}

func (m *mockProgressService) Get(ctx context.Context, userID string) (*models.Progress, error) {
	return m.GetFunc(ctx, userID)
}

func (m *mockProgressService) Merge(ctx context.Context, userID string, patch models.ProgressPatch) (*models.Progress, error) {
	return m.MergeFunc(ctx, userID, patch)
}

func (m *mockProgressService) MarkRandomized(ctx context.Context, userID string) (*models.Progress, error) {
	return m.MarkRandomizedFunc(ctx, userID)
}

func (m *mockProgressService) Reset(ctx context.Context, userID string) (*models.Progress, error) {
	return m.ResetFunc(ctx, userID)
}

func (m *mockProgressService) GetCell(ctx context.Context, userID string, index int) (*models.CellDetail, error) {
	return m.GetCellFunc(ctx, userID, index)
}

func (m *mockProgressService) PutCell(ctx context.Context, userID string, index int, detail models.CellDetail) (*models.CellDetail, error) {
	return m.PutCellFunc(ctx, userID, index, detail)
}

func (m *mockProgressService) DeleteCell(ctx context.Context, userID string, index int) error {
	return m.DeleteCellFunc(ctx, userID, index)
}

type mockActivityService struct {
	FeedFunc func(ctx context.Context) ([]models.Activity, error)
}

func (m *mockActivityService) Feed(ctx context.Context) ([]models.Activity, error) {
	return m.FeedFunc(ctx)
}
