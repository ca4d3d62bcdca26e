// Package batch sizes several pipe runs against one catalog snapshot.
package batch

import (
	"fmt"

	"Ductolator/internal/calc/pipe"
	"Ductolator/internal/catalog"
)

type PipeBatchInput struct {
	Items []pipe.SizeInput `json:"items"`
}

// ItemResult carries either a sizing result or the error for one item.
// A failing item does not stop the batch.
type ItemResult struct {
	Index  int              `json:"index"`
	Result *pipe.SizeResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type PipeBatchResult struct {
	Count   int          `json:"count"`
	Failed  int          `json:"failed"`
	Results []ItemResult `json:"results"`
}

// SizePipes runs pipe.Size for every item against the same snapshot, so a
// concurrent catalog reload cannot split a batch across two catalogs.
func SizePipes(in PipeBatchInput, cat *catalog.Snapshot) (PipeBatchResult, error) {
	if len(in.Items) == 0 {
		return PipeBatchResult{}, fmt.Errorf("no items")
	}
	out := PipeBatchResult{Results: make([]ItemResult, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := pipe.Size(item, cat)
		if err != nil {
			out.Failed++
			out.Results = append(out.Results, ItemResult{Index: i, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, ItemResult{Index: i, Result: &res})
	}
	out.Count = len(out.Results) - out.Failed
	return out, nil
}
