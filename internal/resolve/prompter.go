// Package resolve fills a partial parameter bundle field by field. Each field
// takes the first available of: the explicit value already in the bundle, a
// value persisted by a previous run, an answer to a prompt seeded with the best
// known default.
package resolve

// Prompter asks the operator for values. Implementations must return a value
// that passes validate, re-asking as needed; non-interactive implementations
// return the seed.
type Prompter interface {
	Ask(question, def string, validate func(string) error) (string, error)
	// AskSecret is Ask with hidden input. An empty answer keeps def.
	AskSecret(question, def string, validate func(string) error) (string, error)
	Select(question string, options []string, def string) (string, error)
	Confirm(question string, def bool) (bool, error)
}

// Defaults answers every question with its seed
type Defaults struct{}

func (Defaults) Ask(_ string, def string, _ func(string) error) (string, error) {
	return def, nil
}

func (Defaults) AskSecret(_ string, def string, _ func(string) error) (string, error) {
	return def, nil
}

func (Defaults) Select(_ string, options []string, def string) (string, error) {
	if def == "" && len(options) > 0 {
		return options[0], nil
	}
	return def, nil
}

func (Defaults) Confirm(_ string, def bool) (bool, error) {
	return def, nil
}
