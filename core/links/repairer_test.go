package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/core/xref"
)

func TestRepair_Heuristic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		count int
	}{
		{
			name:  "parenthesized url gets path text",
			input: "(https://example.com/posts/my-great-post)",
			want:  "[My Great Post](https://example.com/posts/my-great-post)",
			count: 1,
		},
		{
			name:  "parenthesized url with empty path gets host",
			input: "Source: (https://www.example.com/)",
			want:  "Source: [example.com](https://www.example.com/)",
			count: 1,
		},
		{
			name:  "standalone url keeps trailing punctuation outside",
			input: "Read https://example.com/guides/getting_started.html.",
			want:  "Read [Getting Started](https://example.com/guides/getting_started.html).",
			count: 1,
		},
		{
			name:  "standalone url inside prose parentheses",
			input: "(see https://example.com/a, it helps)",
			want:  "(see [A](https://example.com/a), it helps)",
			count: 1,
		},
		{
			name:  "existing link untouched",
			input: "[Docs](https://example.com/docs)",
			want:  "[Docs](https://example.com/docs)",
			count: 0,
		},
		{
			name:  "link text url untouched",
			input: "[https://example.com](https://example.com)",
			want:  "[https://example.com](https://example.com)",
			count: 0,
		},
		{
			name:  "autolink untouched",
			input: "<https://example.com/x>",
			want:  "<https://example.com/x>",
			count: 0,
		},
		{
			name:  "code untouched",
			input: "`curl https://example.com/api`\n\n```\nhttps://example.com/raw\n```\n",
			want:  "`curl https://example.com/api`\n\n```\nhttps://example.com/raw\n```\n",
			count: 0,
		},
		{
			name:  "html attribute untouched",
			input: `<img src="https://example.com/a.png" />`,
			want:  `<img src="https://example.com/a.png" />`,
			count: 0,
		},
		{
			name:  "adjacent unrelated brackets do not hide a bare url",
			input: "[note] https://example.com/later [other]",
			want:  "[note] [Later](https://example.com/later) [other]",
			count: 1,
		},
		{
			name:  "strong emphasis around a url",
			input: "See **https://example.com/posts/my-great-post** now.",
			want:  "See **[My Great Post](https://example.com/posts/my-great-post)** now.",
			count: 1,
		},
		{
			name:  "emphasis around a url before punctuation",
			input: "Read *https://example.com/a*.",
			want:  "Read *[A](https://example.com/a)*.",
			count: 1,
		},
		{
			name:  "underscore emphasis around a url",
			input: "Try __https://example.com/b__ today",
			want:  "Try __[B](https://example.com/b)__ today",
			count: 1,
		},
		{
			name:  "short host without a path",
			input: "Mirror at http://a for now",
			want:  "Mirror at [a](http://a) for now",
			count: 1,
		},
		{
			name:  "scheme alone is left alone",
			input: "Type http:// then the host",
			want:  "Type http:// then the host",
			count: 0,
		},
		{
			name:  "both passes in one document",
			input: "A (https://example.com/one) and https://example.com/two",
			want:  "A [One](https://example.com/one) and [Two](https://example.com/two)",
			count: 2,
		},
	}

	r := New(xref.Table{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n := r.Repair(tt.input)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestRepair_CrossReference(t *testing.T) {
	table := xref.New(map[string]string{
		"https://example.com/posts/my-great-post": "my **favourite** post",
		"https://example.com/brackets":            "see [1]",
	})
	r := New(table)

	out, n := r.Repair("(https://example.com/posts/my-great-post) and https://example.com/brackets")
	assert.Equal(t,
		"[my **favourite** post](https://example.com/posts/my-great-post) and [see \\[1\\]](https://example.com/brackets)",
		out)
	assert.Equal(t, 2, n)
}

func TestRepair_TrailingBackslashText(t *testing.T) {
	r := New(xref.New(map[string]string{"https://example.com/foo": `Foo\`}))

	once, n := r.Repair("See https://example.com/foo")
	require.Equal(t, 1, n)
	assert.Equal(t, `See [Foo\\](https://example.com/foo)`, once)

	twice, n := r.Repair(once)
	assert.Zero(t, n)
	assert.Equal(t, once, twice)
}

func TestRepair_Idempotent(t *testing.T) {
	r := New(xref.Table{})
	input := "Intro (https://example.com/posts/my-great-post).\n\n" +
		"Bold **https://example.com/bold** text.\n\n" +
		"- https://example.com/list-item\n- [Kept](https://example.com/kept)\n"

	once, n := r.Repair(input)
	require.Equal(t, 3, n)

	twice, n := r.Repair(once)
	assert.Equal(t, once, twice)
	assert.Zero(t, n)
}

func TestRewrite_KeepsFrontMatter(t *testing.T) {
	r := New(xref.Table{})
	assert.Equal(t, core.StageLinks, r.Name())

	doc := core.Document{
		Path:    "post.mdx",
		Content: "---\ntitle: Post\ncanonical: https://example.com/post\n---\nBody https://example.com/body\n",
	}
	res, err := r.Rewrite(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t,
		"---\ntitle: Post\ncanonical: https://example.com/post\n---\nBody [Body](https://example.com/body)\n",
		res.Text)
}

func TestText_Fallbacks(t *testing.T) {
	r := New(xref.Table{})
	assert.Equal(t, "example.org", r.Text("https://example.org"))
	assert.Equal(t, "Link", r.Text("https://exa mple.org/%zz"))
}
