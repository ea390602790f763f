// Package command turns natural-language operator instructions into canonical
// agent commands and routes them to the subsystems they control.
package command

import (
	"context"
	"encoding/json"

	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/prompts"
	"github.com/jonathan/autojob/internal/schemas"
	"github.com/jonathan/autojob/internal/types"
)

// Interpreter converts operator instructions into CommandResult values.
type Interpreter struct {
	client llm.Client
}

// NewInterpreter creates an Interpreter backed by the given LLM client.
func NewInterpreter(client llm.Client) *Interpreter {
	return &Interpreter{client: client}
}

// Interpret maps an instruction onto the closed command vocabulary. It fails
// closed: any LLM failure, schema violation, or out-of-vocabulary action
// yields a blocked command with a reason, never an error. Only context
// cancellation is propagated.
func (i *Interpreter) Interpret(ctx context.Context, instruction string) (*types.CommandResult, error) {
	if instruction == "" {
		return blocked("empty instruction"), nil
	}

	template := prompts.MustGet(prompts.FileCommand, "interpret")
	prompt := prompts.Format(template, map[string]string{
		"Instruction": instruction,
	})

	raw, err := i.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return blocked("interpretation failed: " + err.Error()), nil
	}

	if err := schemas.Validate(schemas.Command, raw); err != nil {
		return blocked("interpretation produced an invalid command"), nil
	}

	var result types.CommandResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return blocked("interpretation produced unparseable output"), nil
	}
	if !result.Action.Known() {
		return blocked("unrecognized action"), nil
	}
	return &result, nil
}

func blocked(reason string) *types.CommandResult {
	return &types.CommandResult{
		Action: types.ActionBlocked,
		Reason: reason,
	}
}
