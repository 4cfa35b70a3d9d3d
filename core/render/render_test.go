package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/mdrepair/core"
)

func sampleSummary() core.Summary {
	return core.Summary{
		Stages: []core.StageResult{
			{Stage: core.StageEntities, Scanned: 10, Changed: 2, Count: 5},
			{Stage: core.StageLinks, Scanned: 10, Changed: 1, Count: 1,
				Failures: []core.Failure{{Path: "bad.md", Error: "boom"}}},
		},
		Assets: &core.AssetTotals{DuplicatesRemoved: 2, UnusedRemoved: 1, BytesReclaimed: 2048},
	}
}

func TestJSONRenderer(t *testing.T) {
	t.Run("Should encode stages and asset totals", func(t *testing.T) {
		data, err := NewJSONRenderer().Render(sampleSummary())
		require.NoError(t, err)

		var decoded core.Summary
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded.Stages, 2)
		assert.Equal(t, "bad.md", decoded.Stages[1].Failures[0].Path)
		assert.Equal(t, int64(2048), decoded.Assets.BytesReclaimed)
	})

	t.Run("Should encode an empty summary as an empty list", func(t *testing.T) {
		data, err := NewJSONRenderer().Render(core.Summary{})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"stages": []`)
		assert.NotContains(t, string(data), "assets")
	})
}

func TestTextRenderer(t *testing.T) {
	t.Run("Should print one line per stage and the asset totals", func(t *testing.T) {
		data, err := NewTextRenderer().Render(sampleSummary())
		require.NoError(t, err)

		out := string(data)
		assert.Contains(t, out, "5 entities fixed in 2 of 10 documents")
		assert.Contains(t, out, "1 links fixed in 1 of 10 documents")
		assert.Contains(t, out, "1 failed")
		assert.Contains(t, out, "2 duplicates removed, 1 unused removed, 2.0 kB reclaimed")
	})

	t.Run("Should flag dry runs and pending deletions", func(t *testing.T) {
		summary := core.Summary{
			Stages: []core.StageResult{{Stage: core.StageAssets, DryRun: true}},
			Assets: &core.AssetTotals{PendingDeletion: 3, PendingBytes: 1500},
		}
		data, err := NewTextRenderer().Render(summary)
		require.NoError(t, err)

		out := string(data)
		assert.Contains(t, out, "Summary (dry run)")
		assert.Contains(t, out, "3 files (1.5 kB) awaiting confirmation")
	})
}
