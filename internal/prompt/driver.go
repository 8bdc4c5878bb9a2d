// Package prompt holds the interactive terminal prompts used by the sdui CLI.
package prompt

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

var (
	// ErrAborted is returned when the user interrupts a prompt.
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoOptions is returned when a selection has nothing to choose from.
	ErrNoOptions = errors.New("prompt: no options")
)

// SelectConfig describes a single choice question. DefaultIndex outside
// Options leaves the cursor on the first entry.
type SelectConfig struct {
	Message      string
	Help         string
	Options      []string
	DefaultIndex int
	PageSize     int
}

// ConfirmConfig describes a yes/no question.
type ConfirmConfig struct {
	Message string
	Help    string
	Default bool
}

// Driver asks questions. Commands take one so tests can answer without a
// terminal.
type Driver interface {
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
}

// NewSurveyDriver returns a Driver that prompts on the terminal. opts are
// passed to every question, e.g. survey.WithStdio in tests.
func NewSurveyDriver(opts ...survey.AskOpt) Driver {
	return surveyDriver(opts)
}

type surveyDriver []survey.AskOpt

func (d surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if len(cfg.Options) == 0 {
		return 0, ErrNoOptions
	}
	question := &survey.Select{
		Message:  cfg.Message,
		Help:     cfg.Help,
		Options:  cfg.Options,
		PageSize: cfg.PageSize,
	}
	if cfg.DefaultIndex > 0 && cfg.DefaultIndex < len(cfg.Options) {
		question.Default = cfg.DefaultIndex
	}
	// survey writes the chosen index when the answer is an int.
	var choice int
	if err := d.ask(ctx, question, &choice); err != nil {
		return 0, err
	}
	return choice, nil
}

func (d surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	answer := cfg.Default
	err := d.ask(ctx, &survey.Confirm{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}, &answer)
	return answer, err
}

func (d surveyDriver) ask(ctx context.Context, question survey.Prompt, answer any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(question, answer, d...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(values []string, want string) int {
	for i, value := range values {
		if value == want {
			return i
		}
	}
	return -1
}
