package ui

import (
	"fmt"
	"slices"

	"github.com/AlecAivazis/survey/v2"

	"github.com/madara-alliance/madara-cli/internal/common"
)

func surveyValidator(validate func(string) error) survey.Validator {
	return func(ans interface{}) error {
		s, ok := ans.(string)
		if !ok {
			return fmt.Errorf("unexpected answer type %T", ans)
		}
		return validate(s)
	}
}

// Ask prompts for a single value, re-asking until validate accepts it. In
// non-interactive mode the default is returned if it validates.
func (u *UI) Ask(question, def string, validate func(string) error) (string, error) {
	if u.nonInteractive {
		if validate != nil {
			if err := validate(def); err != nil {
				return "", common.ValidationError(question, fmt.Errorf("default %w", err))
			}
		}
		return def, nil
	}

	var result string
	p := &survey.Input{
		Message: question,
		Default: def,
	}

	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(surveyValidator(validate)))
	}

	err := survey.AskOne(p, &result, opts...)
	return result, err
}

// AskSecret prompts for hidden input. An empty answer keeps def. In
// non-interactive mode an empty def is returned as is and the caller decides
// whether the value is required.
func (u *UI) AskSecret(question, def string, validate func(string) error) (string, error) {
	check := func(s string) error {
		if validate == nil {
			return nil
		}
		return validate(s)
	}

	if u.nonInteractive {
		if def == "" {
			return "", nil
		}
		if err := check(def); err != nil {
			return "", common.ValidationError(question, fmt.Errorf("default %w", err))
		}
		return def, nil
	}

	msg := question
	if def != "" {
		msg += " (leave empty to keep the current value)"
	}

	for {
		var result string
		if err := survey.AskOne(&survey.Password{Message: msg}, &result); err != nil {
			return "", err
		}
		if result == "" {
			result = def
		}
		if err := check(result); err != nil {
			u.Error(err.Error())
			continue
		}
		return result, nil
	}
}

// Select prompts the user to pick one option. def must be one of options
// or empty.
func (u *UI) Select(question string, options []string, def string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%s: no options", question)
	}
	if def != "" && !slices.Contains(options, def) {
		return "", fmt.Errorf("%s: default %q is not an option", question, def)
	}

	if u.nonInteractive {
		if def == "" {
			return options[0], nil
		}
		return def, nil
	}

	var selected string
	p := &survey.Select{
		Message: question,
		Options: options,
	}
	if def != "" {
		p.Default = def
	}

	err := survey.AskOne(p, &selected)
	return selected, err
}

// Confirm prompts the user for a yes/no answer
func (u *UI) Confirm(question string, def bool) (bool, error) {
	if u.nonInteractive {
		return def, nil
	}

	var result bool
	p := &survey.Confirm{
		Message: question,
		Default: def,
	}

	err := survey.AskOne(p, &result)
	return result, err
}

// PromptSelect prompts the user to select from a list and returns the index
func (u *UI) PromptSelect(prompt string, options []string) (int, error) {
	selected, err := u.Select(prompt, options, "")
	if err != nil {
		return -1, err
	}

	if i := slices.Index(options, selected); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("selected option not found")
}
