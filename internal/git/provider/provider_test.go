// Package provider defines the interface for Git providers.
package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ====================
// Tests for ProviderError
// ====================

func TestProviderError(t *testing.T) {
	t.Run("error without wrapped error", func(t *testing.T) {
		err := &ProviderError{
			Provider: "github",
			Message:  "test error",
		}
		assert.Equal(t, "[github] test error", err.Error())
	})

	t.Run("error with wrapped error", func(t *testing.T) {
		wrappedErr := errors.New("wrapped error")
		err := &ProviderError{
			Provider: "gitlab",
			Message:  "test error",
			Err:      wrappedErr,
		}
		assert.Equal(t, "[gitlab] test error: wrapped error", err.Error())
		assert.Equal(t, wrappedErr, err.Unwrap())
	})
}

// ====================
// Tests for Register and Create
// ====================

func TestRegisterAndCreate(t *testing.T) {
	// Save original registry
	originalRegistry := make(map[string]ProviderFactory)
	for k, v := range Registry {
		originalRegistry[k] = v
	}
	defer func() {
		Registry = originalRegistry
	}()

	// Clear registry for test
	Registry = make(map[string]ProviderFactory)

	t.Run("register and create provider", func(t *testing.T) {
		factory := func(opts *ProviderOptions) (Provider, error) {
			return &mockProvider{name: "test"}, nil
		}

		Register("test-provider", factory)

		provider, err := Create("test-provider", &ProviderOptions{})
		assert.NoError(t, err)
		assert.NotNil(t, provider)
		assert.Equal(t, "test", provider.Name())
	})

	t.Run("create non-existent provider", func(t *testing.T) {
		_, err := Create("nonexistent", &ProviderOptions{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "provider not registered")
	})

	t.Run("factory returns error", func(t *testing.T) {
		factory := func(opts *ProviderOptions) (Provider, error) {
			return nil, errors.New("factory error")
		}

		Register("error-provider", factory)

		_, err := Create("error-provider", &ProviderOptions{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "factory error")
	})
}

// ====================
// Mock Provider for testing
// ====================

type mockProvider struct {
	name string
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) GetBaseURL() string {
	return "https://example.com"
}

func (m *mockProvider) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	return nil, nil
}

func (m *mockProvider) PostComment(ctx context.Context, owner, repo string, opts *CommentOptions, body string) error {
	return nil
}

func (m *mockProvider) ValidateToken(ctx context.Context) error {
	return nil
}

func (m *mockProvider) GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]*FileDiff, error) {
	return nil, nil
}

func (m *mockProvider) GetFileContent(ctx context.Context, owner, repo, ref, path string) (string, error) {
	return "", nil
}

func (m *mockProvider) GetPRThreads(ctx context.Context, owner, repo string, prNumber int) ([]*ReviewThread, error) {
	return nil, nil
}

func (m *mockProvider) CreateInlineComment(ctx context.Context, owner, repo string, prNumber int, filePath string, line int, body string) error {
	return nil
}
