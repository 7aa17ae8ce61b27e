package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/huh"

	"github.com/Hritik-Goblyte/raama-poetic-erp-sub000/internal/model"
)

// PermissionStore persists the desktop notification permission.
type PermissionStore interface {
	Permission(ctx context.Context) model.Permission
	SetPermission(ctx context.Context, p model.Permission) error
}

// Prompter asks the user whether desktop notifications are allowed.
type Prompter interface {
	Ask(ctx context.Context) (bool, error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(ctx context.Context) (bool, error)

func (f PromptFunc) Ask(ctx context.Context) (bool, error) { return f(ctx) }

// Permissions tracks the desktop notification permission. The user is
// prompted at most once; after that the stored answer is returned.
type Permissions struct {
	store    PermissionStore
	prompter Prompter
	mu       sync.Mutex
}

// NewPermissions creates a permission manager.
func NewPermissions(s PermissionStore, p Prompter) *Permissions {
	return &Permissions{store: s, prompter: p}
}

// State returns the stored permission.
func (p *Permissions) State(ctx context.Context) model.Permission {
	return p.store.Permission(ctx)
}

// Granted reports whether desktop notifications are allowed.
func (p *Permissions) Granted(ctx context.Context) bool {
	return p.State(ctx) == model.PermissionGranted
}

// Request prompts the user when no decision has been recorded yet and
// reports whether the permission is granted.
func (p *Permissions) Request(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.store.Permission(ctx) {
	case model.PermissionGranted:
		return true, nil
	case model.PermissionDenied:
		return false, nil
	}

	if p.prompter == nil {
		return false, nil
	}

	ok, err := p.prompter.Ask(ctx)
	if err != nil {
		return false, fmt.Errorf("asking notification permission: %w", err)
	}

	answer := model.PermissionDenied
	if ok {
		answer = model.PermissionGranted
	}
	if err := p.store.SetPermission(ctx, answer); err != nil {
		return ok, fmt.Errorf("saving notification permission: %w", err)
	}
	return ok, nil
}

// Reset forgets the stored decision so the next Request prompts again.
func (p *Permissions) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.SetPermission(ctx, model.PermissionDefault)
}

// HuhPrompter asks with a huh confirm dialog. It must run before the
// Bubble Tea program takes over the terminal.
type HuhPrompter struct{}

func (HuhPrompter) Ask(ctx context.Context) (bool, error) {
	allow := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show desktop notifications?").
				Description("Likes, comments and follows will also appear as system notifications.").
				Affirmative("Allow").
				Negative("Block").
				Value(&allow),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return allow, nil
}
