package port

import "context"

// DraftInput carries what a research assistant needs to draft a dossier.
type DraftInput struct {
	Territory string
	Notes     string
}

// DraftOutput is the assistant's raw answer. Text is untrusted and goes
// through the import pipeline like any pasted dossier.
type DraftOutput struct {
	Text       string
	ModelUsed  string
	PromptUsed string
}

// DossierAssistant abstracts an LLM that drafts territory dossiers.
type DossierAssistant interface {
	Draft(ctx context.Context, input DraftInput) (*DraftOutput, error)
}
