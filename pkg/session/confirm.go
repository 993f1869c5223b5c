package session

import "context"

// PromptKind identifies why the controller is asking for confirmation.
type PromptKind string

const (
	// PromptDiscard guards transitions that would throw away unsaved changes.
	PromptDiscard PromptKind = "discard"
	// PromptDelete guards permanent deletion of a note.
	PromptDelete PromptKind = "delete"
)

// Prompt describes a pending confirmation.
type Prompt struct {
	Kind    PromptKind
	NoteID  string // Note the transition targets, if any.
	Message string // Human readable question.
}

const (
	msgDiscardSwitch = "You have unsaved changes. Switch notes anyway?"
	msgDiscardNew    = "You have unsaved changes. Discard them and create a new note?"
	msgDelete        = "Delete this note? This cannot be undone."
)

// Confirmer is the yes/no decision provider supplied by the presentation
// layer. Confirm may block until the user answers; the controller does not
// hold its lock while waiting, so implementations may read controller state.
//
// An error is treated as a decline.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// Always accepts every prompt.
func Always() Confirmer {
	return ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })
}

// Never declines every prompt.
func Never() Confirmer {
	return ConfirmFunc(func(context.Context, Prompt) (bool, error) { return false, nil })
}

// Deferred adapts a provider that answers later, e.g. a dialog resolved by an
// event loop. The controller waits for the first value on the returned
// channel; a closed channel or a done ctx counts as a decline.
func Deferred(ask func(p Prompt) <-chan bool) Confirmer {
	return ConfirmFunc(func(ctx context.Context, p Prompt) (bool, error) {
		select {
		case ok, open := <-ask(p):
			return ok && open, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	})
}
