package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ether-stories-api/internal/domain/entity"
	"ether-stories-api/internal/domain/repository"
)

// MockStoryArtifactStore is a mock type for the StoryArtifactStore type
type MockStoryArtifactStore struct {
	mock.Mock
}

// Save provides a mock function with given fields: ctx, artifact
func (_m *MockStoryArtifactStore) Save(ctx context.Context, artifact *entity.StoryArtifact) error {
	ret := _m.Called(ctx, artifact)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *entity.StoryArtifact) error); ok {
		r0 = rf(ctx, artifact)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockStoryArtifactStore) GetByID(ctx context.Context, id string) (*entity.StoryArtifact, error) {
	ret := _m.Called(ctx, id)

	var r0 *entity.StoryArtifact
	if rf, ok := ret.Get(0).(func(context.Context, string) *entity.StoryArtifact); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*entity.StoryArtifact)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// List provides a mock function with given fields: ctx, p
func (_m *MockStoryArtifactStore) List(ctx context.Context, p repository.Pagination) (*repository.PagedResult[entity.StoryArtifact], error) {
	ret := _m.Called(ctx, p)

	var r0 *repository.PagedResult[entity.StoryArtifact]
	if rf, ok := ret.Get(0).(func(context.Context, repository.Pagination) *repository.PagedResult[entity.StoryArtifact]); ok {
		r0 = rf(ctx, p)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*repository.PagedResult[entity.StoryArtifact])
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, repository.Pagination) error); ok {
		r1 = rf(ctx, p)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockStoryArtifactStore creates a new instance of MockStoryArtifactStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockStoryArtifactStore(t interface {
	mock.TestingT
	Helper()
}) *MockStoryArtifactStore {
	m := &MockStoryArtifactStore{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoryArtifactStore = (*MockStoryArtifactStore)(nil)
