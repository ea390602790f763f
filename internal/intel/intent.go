package intel

import (
	"context"
	"encoding/json"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/types"
)

// AnalyzeIntent classifies the hiring intent of an already-extracted record.
// Used when extraction produced a record without an intent judgment, such as
// fallback records built from the URL alone.
func (e *Extractor) AnalyzeIntent(ctx context.Context, job *types.JobRecord) (*types.IntentSignal, error) {
	doc, err := json.Marshal(job)
	if err != nil {
		return nil, &ParseError{Message: "failed to encode job record", Cause: err}
	}

	prompt := llm.BuildExtractionPrompt(llm.IntentSignalsSchema(), string(doc))
	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &APICallError{Message: "failed to analyze hiring intent", Cause: err}
	}

	var out struct {
		IntentSignals []types.IntentSignal `json:"intent_signals"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &ParseError{Message: "failed to parse intent signals", Cause: err}
	}

	signal := strongestSignal(out.IntentSignals)
	if signal == nil {
		return nil, &ParseError{Message: "no intent signals in response"}
	}
	return signal, nil
}
