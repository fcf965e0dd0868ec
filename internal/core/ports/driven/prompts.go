package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer grounds an answer on retrieved excerpts. The template holds
	// PlaceholderSources once, followed later by PlaceholderQuestion once.
	PromptAnswer = "answer"
)

// Placeholders substituted into prompt templates. Any other text, including
// percent signs and braces, is copied verbatim.
const (
	PlaceholderSources  = "{{sources}}"
	PlaceholderQuestion = "{{question}}"
)

// DefaultAnswerPrompt is the built-in PromptAnswer template.
const DefaultAnswerPrompt = `Here are excerpts from documents:
{{sources}}

Question: {{question}}
Synthesize a precise answer and cite your sources where possible.`
