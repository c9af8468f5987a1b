package status

import (
	"context"
	"fmt"

	"github.com/vmunix/reelmate/internal/permission"
)

// PromptConsent grants Dir, or the suggested folder when Dir is empty,
// after a yes/no confirmation.
type PromptConsent struct {
	Prompter permission.Prompter
	Dir      string
}

func (c PromptConsent) Approve(ctx context.Context, suggested string) (string, bool, error) {
	dir := c.Dir
	if dir == "" {
		dir = suggested
	}
	ok, err := c.Prompter.Confirm(ctx, fmt.Sprintf("Allow reelmate to read statuses from %s?", dir))
	if err != nil || !ok {
		return "", false, err
	}
	return dir, true, nil
}
