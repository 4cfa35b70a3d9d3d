package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/mdrepair/core"
)

var legacy = []string{"welltechnically.com"}

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		count int
	}{
		{
			name:  "thumbnail pair with size keeps full image",
			input: "[Thumb 150x150](thumb.png)][Full Image](full.png)",
			want:  "![Full Image](full.png)",
			count: 1,
		},
		{
			name:  "stray bang before pair is consumed",
			input: "see ![Thumb 150x150](t.png)][Full](https://cdn.example.com/f.jpg) now",
			want:  "see ![Full](https://cdn.example.com/f.jpg) now",
			count: 1,
		},
		{
			name:  "empty full alt falls back to thumbnail alt",
			input: "[Sunset 300x200](s-300x200.jpg)][](sunset.jpg)",
			want:  "![Sunset](sunset.jpg)",
			count: 1,
		},
		{
			name:  "thumbnail pair without size",
			input: "[thumb](t.png)][Diagram](diagram.png)",
			want:  "![Diagram](diagram.png)",
			count: 1,
		},
		{
			name:  "single sized reference",
			input: "Look: [Chart 640x480](https://example.com/chart.webp).",
			want:  "Look: ![Chart](https://example.com/chart.webp).",
			count: 1,
		},
		{
			name:  "sized reference without alt",
			input: "[800x600](/images/a.gif)",
			want:  "![](/images/a.gif)",
			count: 1,
		},
		{
			name:  "sized reference to a page is left alone",
			input: "[Report 2012x1](https://example.com/report)",
			want:  "[Report 2012x1](https://example.com/report)",
			count: 0,
		},
		{
			name:  "well formed image is untouched",
			input: "![Logo 64x64](logo.svg)",
			want:  "![Logo 64x64](logo.svg)",
			count: 0,
		},
		{
			name:  "legacy host sized reference becomes placeholder",
			input: "[Old Photo 640x480](http://welltechnically.com/x.png)",
			want:  "[Image: Old Photo]",
			count: 1,
		},
		{
			name:  "legacy host canonical image becomes placeholder",
			input: "![Old Photo](http://welltechnically.com/x.png)",
			want:  "[Image: Old Photo]",
			count: 1,
		},
		{
			name:  "legacy host pair becomes placeholder",
			input: "[a 150x150](http://www.welltechnically.com/a-150x150.png)][Old Photo](http://www.welltechnically.com/a.png)",
			want:  "[Image: Old Photo]",
			count: 1,
		},
		{
			name:  "legacy placeholder without alt uses file name",
			input: `![](http://welltechnically.com/wp-content/uploads/my-cat.jpg "cat")`,
			want:  "[Image: My Cat]",
			count: 1,
		},
		{
			name:  "other hosts are never checked",
			input: "![Photo](http://example.org/gone.png)",
			want:  "![Photo](http://example.org/gone.png)",
			count: 0,
		},
	}

	r := New(legacy)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n := r.Repair(tt.input)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestRepair_Idempotent(t *testing.T) {
	r := New(legacy)
	input := "# Post\n\n[Thumb 150x150](thumb.png)][Full Image](full.png)\n\n" +
		"[a 1x1](a.png)[b 2x2](b.png)\n\n" +
		"[Old Photo 640x480](http://welltechnically.com/x.png)\n"

	once, n := r.Repair(input)
	require.Equal(t, 4, n)

	twice, n := r.Repair(once)
	assert.Equal(t, once, twice)
	assert.Zero(t, n)
}

func TestRewrite_WarnsOnAmbiguous(t *testing.T) {
	r := New(legacy)
	assert.Equal(t, core.StageImages, r.Name())

	res, err := r.Rewrite(core.Document{
		Path:    "post.md",
		Content: "[Slides 1024x768](https://example.com/deck)",
	})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "post.md")
}
