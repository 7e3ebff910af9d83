package services

import "github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptDisambiguate: defaultDisambiguatePrompt,
		driven.PromptClassify:     defaultClassifyPrompt,
	}
}
