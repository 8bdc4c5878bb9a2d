package prompt

import (
	"context"
	"fmt"
)

// PickPage asks the user to choose one of pages. preferred is preselected
// when present. A single page is returned without prompting.
func PickPage(ctx context.Context, driver Driver, pages []string, preferred string) (string, error) {
	switch len(pages) {
	case 0:
		return "", ErrNoOptions
	case 1:
		return pages[0], nil
	}
	idx, err := driver.Select(ctx, SelectConfig{
		Message:      "Page to render",
		Options:      pages,
		DefaultIndex: indexOf(pages, preferred),
		Help:         "Pages are discovered from the layouts directory",
		PageSize:     10,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(pages) {
		return "", fmt.Errorf("prompt: selection %d out of range", idx)
	}
	return pages[idx], nil
}

// ConfirmOverwrite asks before replacing path.
func ConfirmOverwrite(ctx context.Context, driver Driver, path string) (bool, error) {
	return driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("%s exists. Overwrite?", path),
		Default: false,
	})
}
