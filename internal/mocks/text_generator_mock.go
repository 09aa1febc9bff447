package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ether-stories-api/internal/application/story"
)

// MockTextGenerator is a mock type for the TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

// GenerateChapter provides a mock function with given fields: ctx, prompt
func (_m *MockTextGenerator) GenerateChapter(ctx context.Context, prompt story.TextPrompt) (*story.TextResult, error) {
	ret := _m.Called(ctx, prompt)

	var r0 *story.TextResult
	if rf, ok := ret.Get(0).(func(context.Context, story.TextPrompt) *story.TextResult); ok {
		r0 = rf(ctx, prompt)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*story.TextResult)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, story.TextPrompt) error); ok {
		r1 = rf(ctx, prompt)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockTextGenerator creates a new instance of MockTextGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTextGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.TextGenerator = (*MockTextGenerator)(nil)
