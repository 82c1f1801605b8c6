package importer

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/matvault/matvault/internal/catalog/models"
	"github.com/matvault/matvault/internal/catalog/repository"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) VideoByLocalPath(ctx context.Context, path string) (*models.Video, error) {
	args := m.Called(ctx, path)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) CategoryByNameContains(ctx context.Context, s string) (*models.Category, error) {
	args := m.Called(ctx, s)
	if v := args.Get(0); v != nil {
		return v.(*models.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) Begin(ctx context.Context) (repository.Batch, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(repository.Batch), args.Error(1)
	}
	return nil, args.Error(1)
}

type BatchMock struct {
	mock.Mock
}

func (m *BatchMock) CreateVideo(v *models.Video)          { m.Called(v) }
func (m *BatchMock) CreateCategory(c *models.Category)    { m.Called(c) }
func (m *BatchMock) UpdateVideo(v *models.Video)          { m.Called(v) }
func (m *BatchMock) RecordEvent(e models.DomainEvent)     { m.Called(e) }
func (m *BatchMock) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *BatchMock) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
