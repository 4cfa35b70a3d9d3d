// Package render formats a run summary for the terminal or for machines.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/mdrepair/core"
)

// JSONRenderer emits the summary as indented JSON.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the summary. Empty stage lists encode as [] rather than null.
func (r *JSONRenderer) Render(summary core.Summary) ([]byte, error) {
	if summary.Stages == nil {
		summary.Stages = []core.StageResult{}
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return append(data, '\n'), nil
}
