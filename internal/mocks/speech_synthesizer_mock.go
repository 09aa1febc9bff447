package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ether-stories-api/internal/application/story"
)

// MockSpeechSynthesizer is a mock type for the SpeechSynthesizer type
type MockSpeechSynthesizer struct {
	mock.Mock
}

// Synthesize provides a mock function with given fields: ctx, prompt
func (_m *MockSpeechSynthesizer) Synthesize(ctx context.Context, prompt story.SpeechPrompt) (*story.MediaResult, error) {
	ret := _m.Called(ctx, prompt)

	var r0 *story.MediaResult
	if rf, ok := ret.Get(0).(func(context.Context, story.SpeechPrompt) *story.MediaResult); ok {
		r0 = rf(ctx, prompt)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*story.MediaResult)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, story.SpeechPrompt) error); ok {
		r1 = rf(ctx, prompt)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockSpeechSynthesizer creates a new instance of MockSpeechSynthesizer. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockSpeechSynthesizer(t interface {
	mock.TestingT
	Helper()
}) *MockSpeechSynthesizer {
	m := &MockSpeechSynthesizer{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.SpeechSynthesizer = (*MockSpeechSynthesizer)(nil)
