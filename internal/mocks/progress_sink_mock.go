package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ether-stories-api/internal/application/story"
)

// MockProgressSink is a mock type for the ProgressSink type
type MockProgressSink struct {
	mock.Mock
}

// Publish provides a mock function with given fields: ctx, update
func (_m *MockProgressSink) Publish(ctx context.Context, update story.ProgressUpdate) error {
	ret := _m.Called(ctx, update)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, story.ProgressUpdate) error); ok {
		r0 = rf(ctx, update)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockProgressSink creates a new instance of MockProgressSink. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockProgressSink(t interface {
	mock.TestingT
	Helper()
}) *MockProgressSink {
	m := &MockProgressSink{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.ProgressSink = (*MockProgressSink)(nil)
