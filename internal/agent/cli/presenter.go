// Package cli is the interactive shell of the habitsync agent. It doubles as
// the presentation surface: welcome and sync notices land on the console, and
// blocking prompts (such as device pairing) count as an active modal.
package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"habitsync/internal/agent/onboarding"
)

// ConsolePresenter writes onboarding outcomes to the console. While a
// blocking prompt is open, deliveries are held back by the caller's gate
// until ModalClosed is called.
type ConsolePresenter struct {
	out io.Writer

	mu    sync.Mutex
	modal bool
}

func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	return &ConsolePresenter{out: out}
}

func (p *ConsolePresenter) ShowWelcome(ctx context.Context, s onboarding.DataSummary) {
	fmt.Fprintf(p.out, "\nWelcome back, %s! Your %d habits are ready.\n", s.ProfileName, s.HabitsCount)
}

func (p *ConsolePresenter) ShowStillSyncing(ctx context.Context) {
	fmt.Fprintf(p.out, "\nStill syncing your data in the background...\n")
}

func (p *ConsolePresenter) IsModalActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modal
}

// ModalOpened marks the start of a blocking prompt.
func (p *ConsolePresenter) ModalOpened() {
	p.mu.Lock()
	p.modal = true
	p.mu.Unlock()
}

// ModalClosed marks the end of a blocking prompt. The caller is expected to
// notify the coordinator so deferred outcomes get re-attempted.
func (p *ConsolePresenter) ModalClosed() {
	p.mu.Lock()
	p.modal = false
	p.mu.Unlock()
}
