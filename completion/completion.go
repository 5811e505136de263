// Package completion calls the hosted text-completion service that rewrites
// node content.
package completion

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyCompletion is returned when the service answers without any text.
	ErrEmptyCompletion = errors.New("completion: empty response")
	// ErrUnavailable is returned while the breaker is refusing calls.
	ErrUnavailable = errors.New("completion: service temporarily unavailable")
)

// Completer turns a system instruction and a user text blob into one
// rewritten text blob. Calls may be slow and may fail; nothing retries them.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, systemPrompt, userText string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	return f(ctx, systemPrompt, userText)
}

// SystemPrompt is the fixed writing-assistant persona with the requested
// command embedded.
func SystemPrompt(command string) string {
	return fmt.Sprintf(`You are a helpful writing assistant inside a spatial thinking tool.
The user wants you to perform this action: %s.
Return ONLY the updated text formatted in HTML (use <p>, <b>, <ul> etc).
Do not add conversational filler like "Here is your text".`, command)
}

// Rewrite applies command to markup and returns the rewritten markup.
func Rewrite(ctx context.Context, c Completer, command, markup string) (string, error) {
	result, err := c.Complete(ctx, SystemPrompt(command), markup)
	if err != nil {
		return "", err
	}
	if result == "" {
		return "", ErrEmptyCompletion
	}
	return result, nil
}
