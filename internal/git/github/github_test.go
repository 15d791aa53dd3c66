package github

import (
	"testing"

	"github.com/verustcode/verustcode/internal/git/provider"
)

// TestNewProvider tests creating a new GitHub provider
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

	if prov.Name() != "github" {
		t.Errorf("Expected provider name 'github', got '%s'", prov.Name())
	}
}

// TestGitHubProvider_Name tests provider name
func TestGitHubProvider_Name(t *testing.T) {
	p := &GitHubProvider{}
	if p.Name() != "github" {
		t.Errorf("Name() = %q, want 'github'", p.Name())
	}
}

// TestGitHubProvider_GetBaseURL tests getting base URL
func TestGitHubProvider_GetBaseURL(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"", "https://github.com"},
		{"https://github.com", "https://github.com"},
		{"https://github.example.com", "https://github.example.com"},
	}

	for _, tt := range tests {
		p := &GitHubProvider{baseURL: tt.baseURL}
		got := p.GetBaseURL()
		if got != tt.want {
			t.Errorf("GetBaseURL() = %q, want %q", got, tt.want)
		}
	}
}
