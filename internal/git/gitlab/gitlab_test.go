package gitlab

import (
	"testing"

	"github.com/verustcode/verustcode/internal/git/provider"
)

// TestNewProvider tests creating a new GitLab provider
func TestNewProvider(t *testing.T) {
	opts := &provider.ProviderOptions{
		Token:   "test-token",
		BaseURL: "",
	}

	prov, err := NewProvider(opts)
	if err != nil {
		t.Fatalf("NewProvider() failed: %v", err)
	}

	if prov == nil {
		t.Fatal("NewProvider() returned nil")
	}

	if prov.Name() != "gitlab" {
		t.Errorf("Expected provider name 'gitlab', got '%s'", prov.Name())
	}
}

// TestGitLabProvider_Name tests provider name
func TestGitLabProvider_Name(t *testing.T) {
	p := &GitLabProvider{}
	if p.Name() != "gitlab" {
		t.Errorf("Name() = %q, want 'gitlab'", p.Name())
	}
}

// TestGitLabProvider_GetBaseURL tests getting base URL
func TestGitLabProvider_GetBaseURL(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"", "https://gitlab.com"},
		{"https://gitlab.com", "https://gitlab.com"},
		{"https://gitlab.example.com", "https://gitlab.example.com"},
	}

	for _, tt := range tests {
		p := &GitLabProvider{baseURL: tt.baseURL}
		got := p.GetBaseURL()
		if got != tt.want {
			t.Errorf("GetBaseURL() = %q, want %q", got, tt.want)
		}
	}
}
