package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ether-stories-api/internal/application/story"
)

// MockTranslator is a mock type for the Translator type
type MockTranslator struct {
	mock.Mock
}

// Translate provides a mock function with given fields: ctx, text, sourceLang, targetLang
func (_m *MockTranslator) Translate(ctx context.Context, text string, sourceLang string, targetLang string) (*story.TranslationResult, error) {
	ret := _m.Called(ctx, text, sourceLang, targetLang)

	var r0 *story.TranslationResult
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) *story.TranslationResult); ok {
		r0 = rf(ctx, text, sourceLang, targetLang)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*story.TranslationResult)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string) error); ok {
		r1 = rf(ctx, text, sourceLang, targetLang)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockTranslator creates a new instance of MockTranslator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTranslator(t interface {
	mock.TestingT
	Helper()
}) *MockTranslator {
	m := &MockTranslator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.Translator = (*MockTranslator)(nil)
