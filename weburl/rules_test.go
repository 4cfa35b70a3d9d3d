package weburl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"/images/photo.JPEG", true},
		{"pic.webp?w=300", true},
		{"https://example.com/doc.pdf", false},
		{"https://example.com/", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImageURL(tt.url), tt.url)
	}
}

func TestIsHost(t *testing.T) {
	hosts := []string{"welltechnically.com"}

	assert.True(t, IsHost("http://welltechnically.com/x.png", hosts))
	assert.True(t, IsHost("https://www.welltechnically.com/x.png", hosts))
	assert.True(t, IsHost("https://cdn.WellTechnically.com/x.png", hosts))
	assert.False(t, IsHost("https://notwelltechnically.com/x.png", hosts))
	assert.False(t, IsHost("/x.png", hosts))
	assert.False(t, IsHost("http://welltechnically.com/x.png", nil))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.png"))
	assert.True(t, IsRemote("//cdn.example.com/a.png"))
	assert.False(t, IsRemote("/images/a.png"))
	assert.False(t, IsRemote("../a.png"))
}

func TestNormalizeURL(t *testing.T) {
	want := "example.com/posts/hello"
	assert.Equal(t, want, NormalizeURL("https://www.example.com/posts/hello/"))
	assert.Equal(t, want, NormalizeURL("http://EXAMPLE.com/posts/hello#top"))
	assert.Equal(t, "example.com?p=12", NormalizeURL("https://example.com/?p=12"))
}

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"slug path", "https://example.com/posts/my-great-post", "My Great Post"},
		{"trailing slash", "https://example.com/2012/05/hello_world/", "Hello World"},
		{"extension stripped", "https://example.com/files/annual-report.pdf", "Annual Report"},
		{"escaped segment", "https://example.com/a/big%20news", "Big News"},
		{"empty path", "https://www.example.com", "example.com"},
		{"root path", "https://example.com/", "example.com"},
		{"unparsable", "https://exa mple.com/%zz", FallbackText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromURL(tt.url))
		})
	}
}
