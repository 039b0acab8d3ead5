package service

import (
	"context"
	"errors"
	"testing"

	"archives/internal/models"
	"archives/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listFn           func(context.Context, repository.ListPostsOptions) ([]*models.Post, error)
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	createFn         func(context.Context, *models.Post) error
	updateFn         func(context.Context, uint, map[string]any) (*models.Post, error)
	deleteFn         func(context.Context, uint) error
	incrementLikesFn func(context.Context, uint) (int, error)
}

func (s *postRepoStub) List(ctx context.Context, opts repository.ListPostsOptions) ([]*models.Post, error) {
	return s.listFn(ctx, opts)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, id uint, fields map[string]any) (*models.Post, error) {
	return s.updateFn(ctx, id, fields)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementLikes(ctx context.Context, id uint) (int, error) {
	return s.incrementLikesFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn: func(_ context.Context, _ repository.ListPostsOptions) ([]*models.Post, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Type: models.PostTypePoetry, Content: "c", Status: models.PostStatusPublished}, nil
		},
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		updateFn: func(_ context.Context, id uint, _ map[string]any) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		incrementLikesFn: func(_ context.Context, _ uint) (int, error) { return 1, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
	}
}

// vipRepoStub is a stub for repository.VIPRepository.
type vipRepoStub struct {
	listFn    func(context.Context) ([]models.VIPEntry, error)
	getByIDFn func(context.Context, uint) (*models.VIPEntry, error)
	createFn  func(context.Context, *models.VIPEntry) error
	updateFn  func(context.Context, uint, map[string]any) (*models.VIPEntry, error)
	deleteFn  func(context.Context, uint) error
}

func (s *vipRepoStub) List(ctx context.Context) ([]models.VIPEntry, error) { return s.listFn(ctx) }
func (s *vipRepoStub) GetByID(ctx context.Context, id uint) (*models.VIPEntry, error) {
	return s.getByIDFn(ctx, id)
}
func (s *vipRepoStub) Create(ctx context.Context, e *models.VIPEntry) error { return s.createFn(ctx, e) }
func (s *vipRepoStub) Update(ctx context.Context, id uint, fields map[string]any) (*models.VIPEntry, error) {
	return s.updateFn(ctx, id, fields)
}
func (s *vipRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }

func noopVIPRepo() *vipRepoStub {
	return &vipRepoStub{
		listFn: func(_ context.Context) ([]models.VIPEntry, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.VIPEntry, error) {
			return &models.VIPEntry{ID: id, Names: "sam", Message: "hi"}, nil
		},
		createFn: func(_ context.Context, _ *models.VIPEntry) error { return nil },
		updateFn: func(_ context.Context, id uint, _ map[string]any) (*models.VIPEntry, error) {
			return &models.VIPEntry{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// adminRepoStub is a stub for repository.AdminRepository.
type adminRepoStub struct {
	getByEmailFn func(context.Context, string) (*models.Admin, error)
	getByIDFn    func(context.Context, uint) (*models.Admin, error)
	createFn     func(context.Context, *models.Admin) error
	listFn       func(context.Context) ([]models.Admin, error)
}

func (s *adminRepoStub) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *adminRepoStub) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	return s.getByIDFn(ctx, id)
}
func (s *adminRepoStub) Create(ctx context.Context, a *models.Admin) error { return s.createFn(ctx, a) }
func (s *adminRepoStub) List(ctx context.Context) ([]models.Admin, error) { return s.listFn(ctx) }

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}
