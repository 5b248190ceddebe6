package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitsync/internal/agent/models"
	"habitsync/internal/agent/onboarding"
	"habitsync/internal/agent/remote"
	"habitsync/internal/agent/repositories/habits"
	"habitsync/internal/agent/repositories/profile"
	"habitsync/internal/logging"
	"habitsync/internal/protocol"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// coordinator is the slice of the onboarding coordinator the shell drives.
type coordinator interface {
	OnDataMightHaveChanged(trigger onboarding.Trigger)
	OnWelcomeDismissed(ctx context.Context) error
	OnModalDismissed(ctx context.Context)
	WelcomePending() bool
}

// Shell is the interactive command loop of the agent.
type Shell struct {
	client    remote.Client
	coord     coordinator
	habits    habits.Repository
	profile   profile.Repository
	presenter *ConsolePresenter
	reader    *bufio.Reader
	out       io.Writer
	logger    logging.Logger
}

func NewShell(client remote.Client, coord coordinator, habitsRepo habits.Repository, profileRepo profile.Repository, presenter *ConsolePresenter, in io.Reader, out io.Writer, logger logging.Logger) *Shell {
	return &Shell{
		client:    client,
		coord:     coord,
		habits:    habitsRepo,
		profile:   profileRepo,
		presenter: presenter,
		reader:    bufio.NewReader(in),
		out:       out,
		logger:    logger.With("module", "shell"),
	}
}

func (s *Shell) status() string {
	parts := []string{}
	if s.client.SignedIn() {
		parts = append(parts, "paired")
	} else {
		parts = append(parts, "unpaired")
	}
	if s.coord.WelcomePending() {
		parts = append(parts, "syncing")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Run reads commands until EOF or quit. It returns when the user leaves or
// ctx is cancelled between commands.
func (s *Shell) Run(ctx context.Context) {
	printlnFn("habitsync agent (type 'help' for commands)")

	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(s.out, "hs %s> ", s.status())
		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			printlnFn("Available commands: status, habits, add, profile, pair, sync, done, exit")

		case "status":
			s.showStatus(ctx)

		case "h", "habits":
			s.listHabits(ctx)

		case "add":
			if len(parts) < 2 {
				printlnFn("Usage: add <name> [kind]")
				continue
			}
			kind := "build"
			if len(parts) > 2 {
				kind = parts[2]
			}
			if err := s.addHabit(ctx, parts[1], kind); err != nil {
				printlnFn("Could not add habit:", err)
			}

		case "profile":
			if err := s.editProfile(ctx); err != nil {
				printlnFn("Could not save profile:", err)
			}

		case "pair":
			if err := s.pair(ctx); err != nil {
				printlnFn("Pairing failed:", err)
			}

		case "sync":
			s.coord.OnDataMightHaveChanged(onboarding.TriggerForeground)

		case "done":
			if err := s.coord.OnWelcomeDismissed(ctx); err != nil {
				printlnFn("Could not record dismissal:", err)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", parts[0])
		}
	}
}

func (s *Shell) showStatus(ctx context.Context) {
	if s.client.SignedIn() {
		printlnFn("Paired with an account.")
	} else {
		printlnFn("Not paired. Use 'pair' to link this device to an account.")
	}
	if s.coord.WelcomePending() {
		printlnFn("Account data is still syncing.")
	}
}

func (s *Shell) listHabits(ctx context.Context) {
	items, err := s.habits.GetAll(ctx)
	if err != nil {
		printlnFn("Could not load habits:", err)
		return
	}
	if len(items) == 0 {
		printlnFn("No habits yet.")
		return
	}
	for _, h := range items {
		printlnFn(" -", h.Name, "("+h.Kind+")")
	}
}

// addHabit stores a new habit locally and uploads the full list when the
// device is paired.
func (s *Shell) addHabit(ctx context.Context, name, kind string) error {
	items, err := s.habits.GetAll(ctx)
	if err != nil {
		return err
	}
	items = append(items, models.Habit{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.habits.ReplaceAll(ctx, items); err != nil {
		return err
	}
	printlnFn("Habit added:", name)

	return s.pushLocalData(ctx)
}

// editProfile prompts for the profile fields, stores them and uploads.
func (s *Shell) editProfile(ctx context.Context) error {
	name, err := GetSimpleText(s.reader, "Your name", s.out)
	if err != nil {
		return err
	}
	gender, err := GetSimpleText(s.reader, "Gender", s.out)
	if err != nil {
		return err
	}
	ageGroup, err := GetSimpleText(s.reader, "Age group (e.g. 25_34)", s.out)
	if err != nil {
		return err
	}

	if err := s.profile.Save(ctx, &models.Profile{Name: name, Gender: gender, AgeGroup: ageGroup}); err != nil {
		return err
	}
	printlnFn("Profile saved.")

	return s.pushLocalData(ctx)
}

// pushLocalData uploads the local habits and profile. Unpaired devices stay
// local-only.
func (s *Shell) pushLocalData(ctx context.Context) error {
	if !s.client.SignedIn() {
		return nil
	}

	items, err := s.habits.GetAll(ctx)
	if err != nil {
		return err
	}
	p, err := s.profile.Load(ctx)
	if err != nil {
		return err
	}

	params := protocol.PushParams{Habits: make([]protocol.Habit, 0, len(items))}
	for _, h := range items {
		params.Habits = append(params.Habits, protocol.Habit{
			ID: h.ID, Name: h.Name, Kind: h.Kind, CreatedAt: h.CreatedAt,
		})
	}
	if p != nil {
		params.Profile = &protocol.Profile{Name: p.Name, Gender: p.Gender, AgeGroup: p.AgeGroup}
	}

	version, err := s.client.Push(ctx, params)
	if err != nil {
		return err
	}
	s.logger.Debug(ctx, "local data pushed", "version", version)
	return nil
}

// pair links this device to an existing account. The prompt counts as a
// blocking modal, so any welcome that becomes ready meanwhile is parked until
// the prompt closes.
func (s *Shell) pair(ctx context.Context) error {
	s.presenter.ModalOpened()
	defer func() {
		s.presenter.ModalClosed()
		s.coord.OnModalDismissed(ctx)
	}()

	account, err := GetSimpleText(s.reader, "Account name", s.out)
	if err != nil {
		return err
	}
	passphrase, err := GetPassphrase(s.out)
	if err != nil {
		return err
	}

	if err := s.client.SignIn(ctx, account, string(passphrase)); err != nil {
		return err
	}
	printlnFn("Device paired.")

	s.coord.OnDataMightHaveChanged(onboarding.TriggerForeground)
	return nil
}
