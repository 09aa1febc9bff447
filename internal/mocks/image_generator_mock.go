package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ether-stories-api/internal/application/story"
)

// MockImageGenerator is a mock type for the ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

// GenerateIllustration provides a mock function with given fields: ctx, prompt
func (_m *MockImageGenerator) GenerateIllustration(ctx context.Context, prompt story.IllustrationPrompt) (*story.MediaResult, error) {
	ret := _m.Called(ctx, prompt)

	var r0 *story.MediaResult
	if rf, ok := ret.Get(0).(func(context.Context, story.IllustrationPrompt) *story.MediaResult); ok {
		r0 = rf(ctx, prompt)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*story.MediaResult)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, story.IllustrationPrompt) error); ok {
		r1 = rf(ctx, prompt)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockImageGenerator creates a new instance of MockImageGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockImageGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockImageGenerator {
	m := &MockImageGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.ImageGenerator = (*MockImageGenerator)(nil)
