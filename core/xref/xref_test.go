package xref

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWXR = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:excerpt="http://wordpress.org/export/1.2/excerpt/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Well Technically</title>
	<item>
		<title>Hello World</title>
		<link>http://welltechnically.com/2012/05/hello-world/</link>
		<content:encoded><![CDATA[<p>See <a href="https://example.com/posts/my-great-post">my <strong>favourite</strong> post</a>
and <a href="/relative">relative</a> and <a href="https://example.com/bare">https://example.com/bare</a>.
Also <a href="https://example.com/posts/my-great-post">a second label</a>.
<a href="https://example.com/pic"><img src="x.png" alt="x"/></a></p>
<nav><a href="https://example.com/home">Home</a></nav>]]></content:encoded>
		<excerpt:encoded><![CDATA[<a href="https://example.com/excerpt">excerpt link</a>]]></excerpt:encoded>
		<wp:post_type>post</wp:post_type>
		<wp:status>publish</wp:status>
	</item>
	<item>
		<title>logo</title>
		<link>http://welltechnically.com/logo/</link>
		<content:encoded><![CDATA[]]></content:encoded>
		<wp:post_type>attachment</wp:post_type>
	</item>
</channel>
</rss>`

func TestParseWXR(t *testing.T) {
	table, err := ParseWXR(strings.NewReader(sampleWXR))
	require.NoError(t, err)

	t.Run("Should record anchor text with inline formatting", func(t *testing.T) {
		text, ok := table.Lookup("https://example.com/posts/my-great-post")
		require.True(t, ok)
		assert.Equal(t, "my **favourite** post", text)
	})

	t.Run("Should map post permalinks to their titles", func(t *testing.T) {
		text, ok := table.Lookup("http://welltechnically.com/2012/05/hello-world/")
		require.True(t, ok)
		assert.Equal(t, "Hello World", text)
	})

	t.Run("Should skip relative, self-labelled and non-content anchors", func(t *testing.T) {
		_, ok := table.Lookup("/relative")
		assert.False(t, ok)
		_, ok = table.Lookup("https://example.com/bare")
		assert.False(t, ok)
		_, ok = table.Lookup("https://example.com/excerpt")
		assert.False(t, ok)
		_, ok = table.Lookup("http://welltechnically.com/logo/")
		assert.False(t, ok)
	})

	t.Run("Should ignore anchors in page chrome", func(t *testing.T) {
		_, ok := table.Lookup("https://example.com/home")
		assert.False(t, ok)
	})
}

func TestTable_Lookup(t *testing.T) {
	table := New(map[string]string{
		"https://www.example.com/posts/hello/": "Hello",
		"":                                     "dropped",
		"https://example.com/empty":            "",
	})

	assert.Equal(t, 1, table.Len())

	text, ok := table.Lookup("http://example.com/posts/hello")
	require.True(t, ok)
	assert.Equal(t, "Hello", text)

	_, ok = table.Lookup("https://example.com/empty")
	assert.False(t, ok)

	var zero Table
	_, ok = zero.Lookup("https://example.com")
	assert.False(t, ok)
	assert.Zero(t, zero.Len())
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/export/links.json",
		[]byte(`{"https://example.com/a": "Alpha"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/export/site.xml", []byte(sampleWXR), 0o644))

	t.Run("Should load JSON exports", func(t *testing.T) {
		table, err := Load(fs, "/export/links.json")
		require.NoError(t, err)
		text, ok := table.Lookup("https://example.com/a")
		require.True(t, ok)
		assert.Equal(t, "Alpha", text)
	})

	t.Run("Should load WXR exports", func(t *testing.T) {
		table, err := Load(fs, "/export/site.xml")
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())
	})

	t.Run("Should collapse whitespace in JSON link text", func(t *testing.T) {
		table, err := ParseJSON(strings.NewReader(`{"https://example.com/b": "  Beta\n  guide  "}`))
		require.NoError(t, err)
		text, ok := table.Lookup("https://example.com/b")
		require.True(t, ok)
		assert.Equal(t, "Beta guide", text)
	})

	t.Run("Should fail for a missing export", func(t *testing.T) {
		_, err := Load(fs, "/export/missing.xml")
		assert.Error(t, err)
	})
}
