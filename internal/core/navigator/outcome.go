package navigator

import (
	"github.com/colonyops/mtdock/internal/backend"
	"github.com/colonyops/mtdock/internal/core/translation"
)

// ProviderResult is one provider's answer during an Advance.
type ProviderResult struct {
	Provider  translation.Provider
	Candidate translation.Candidate
	// Err is the lookup failure, if any. A failed lookup has an empty Candidate.
	Err error
}

// Found reports whether the provider returned a usable candidate.
func (r ProviderResult) Found() bool {
	return r.Err == nil && r.Candidate.Found
}

// NoMore reports whether the provider answered with a 400.
func (r ProviderResult) NoMore() bool {
	return backend.IsNoMore(r.Err)
}

// Outcome describes the settlement of one Advance.
type Outcome struct {
	Direction translation.Direction
	// From is the position the lookups were made relative to.
	From int
	// Position is the cursor position after the call.
	Position int
	// Results holds every provider's answer in precedence order.
	Results []ProviderResult
	// Winner points into Results, nil when Exhausted.
	Winner    *ProviderResult
	Exhausted bool
	// Stalled is set when the winner is the position the call started from.
	// The cursor does not move and no article is fetched.
	Stalled bool
	// Notified is set when NoMoreMessage was sent.
	Notified bool

	Article    translation.Article
	ArticleErr error
}

// Moved reports whether the cursor took a step.
func (o Outcome) Moved() bool {
	return o.Winner != nil && !o.Stalled
}

// Result returns the answer for the named provider.
func (o Outcome) Result(name string) (ProviderResult, bool) {
	for _, r := range o.Results {
		if r.Provider.Name == name {
			return r, true
		}
	}
	return ProviderResult{}, false
}
