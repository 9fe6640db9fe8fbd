package services

import (
	"context"
	"fmt"

	"sattbot/domain/entities"
	"sattbot/domain/interfaces"

	"github.com/google/uuid"
)

// WizardStep identifies a state of the setup wizard machine
type WizardStep int

const (
	StepWelcome WizardStep = iota
	StepPermissions
	StepModeration
	StepAI
	StepReview
	StepDone
)

// String returns a readable step name for logging
func (s WizardStep) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepPermissions:
		return "permissions"
	case StepModeration:
		return "moderation"
	case StepAI:
		return "ai"
	case StepReview:
		return "review"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// WizardModelChoice is a selectable AI model in the wizard
type WizardModelChoice struct {
	Label string
	Model string
}

// WizardAIModels are the models offered by the setup wizard; the first
// entry is the default selection.
var WizardAIModels = []WizardModelChoice{
	{Label: "Llama 3.3 70B (default)", Model: "meta-llama/llama-3.3-70b-instruct"},
	{Label: "Llama 3.1 8B (fast)", Model: "meta-llama/llama-3.1-8b-instruct"},
	{Label: "Mixtral 8x7B", Model: "mistralai/mixtral-8x7b-instruct"},
	{Label: "Qwen 2.5 72B", Model: "qwen/qwen-2.5-72b-instruct"},
}

// WizardDraft accumulates configuration across wizard steps. Nothing
// is persisted until the draft is committed in a single transaction.
type WizardDraft struct {
	Access       map[string]entities.AccessLevel
	SpamMaxMsgs  int
	SpamMuteSecs int
	ScanLimit    int
	NukeDays     int
	AIModel      string
}

// SetupWizard is the explicit state machine behind /setup. Each
// transition validates its input against the current step and mutates
// only the draft; the store is untouched until Commit.
type SetupWizard struct {
	ID      uuid.UUID
	GuildID int64
	Step    WizardStep
	Draft   WizardDraft
}

// NewSetupWizard creates a wizard at the welcome step with a draft
// prefilled from the static defaults
func NewSetupWizard(guildID int64) *SetupWizard {
	access := make(map[string]entities.AccessLevel, len(entities.DefaultCommandAccess))
	for command, level := range entities.DefaultCommandAccess {
		access[command] = level
	}

	return &SetupWizard{
		ID:      uuid.New(),
		GuildID: guildID,
		Step:    StepWelcome,
		Draft: WizardDraft{
			Access:       access,
			SpamMaxMsgs:  entities.DefaultSpamMaxMsgs,
			SpamMuteSecs: entities.DefaultSpamMuteSecs,
			ScanLimit:    entities.DefaultScanLimit,
			NukeDays:     entities.DefaultNukeDays,
			AIModel:      WizardAIModels[0].Model,
		},
	}
}

func (w *SetupWizard) requireStep(step WizardStep) error {
	if w.Step != step {
		return NewValidationError(fmt.Sprintf("wizard is at step %s, expected %s", w.Step, step))
	}
	return nil
}

// Begin moves from the welcome screen into the permissions step
func (w *SetupWizard) Begin() error {
	if err := w.requireStep(StepWelcome); err != nil {
		return err
	}
	w.Step = StepPermissions
	return nil
}

// SkipAll accepts the defaults and jumps straight to done
func (w *SetupWizard) SkipAll() error {
	if err := w.requireStep(StepWelcome); err != nil {
		return err
	}
	w.Step = StepDone
	return nil
}

// SetAccess records an access level choice during the permissions step
func (w *SetupWizard) SetAccess(command string, access entities.AccessLevel) error {
	if err := w.requireStep(StepPermissions); err != nil {
		return err
	}
	if _, known := entities.DefaultCommandAccess[command]; !known {
		return NewValidationError(fmt.Sprintf("unknown command: %s", command))
	}
	if !access.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid access level: %s", access))
	}
	w.Draft.Access[command] = access
	return nil
}

// ConfirmPermissions advances to the moderation step
func (w *SetupWizard) ConfirmPermissions() error {
	if err := w.requireStep(StepPermissions); err != nil {
		return err
	}
	w.Step = StepModeration
	return nil
}

// SetModeration records the moderation thresholds. All values must be
// positive; the draft is untouched on validation failure.
func (w *SetupWizard) SetModeration(spamMaxMsgs, spamMuteSecs, scanLimit, nukeDays int) error {
	if err := w.requireStep(StepModeration); err != nil {
		return err
	}
	if spamMaxMsgs < 1 || spamMuteSecs < 1 || scanLimit < 1 || nukeDays < 1 {
		return NewValidationError("all moderation settings must be positive integers")
	}
	w.Draft.SpamMaxMsgs = spamMaxMsgs
	w.Draft.SpamMuteSecs = spamMuteSecs
	w.Draft.ScanLimit = scanLimit
	w.Draft.NukeDays = nukeDays
	return nil
}

// ConfirmModeration advances to the AI step, keeping whatever the
// draft currently holds (defaults when the step was skipped)
func (w *SetupWizard) ConfirmModeration() error {
	if err := w.requireStep(StepModeration); err != nil {
		return err
	}
	w.Step = StepAI
	return nil
}

// SetAIModel records the model choice during the AI step
func (w *SetupWizard) SetAIModel(model string) error {
	if err := w.requireStep(StepAI); err != nil {
		return err
	}
	if model == "" {
		return NewValidationError("ai model cannot be empty")
	}
	w.Draft.AIModel = model
	return nil
}

// ConfirmAI advances to the review step
func (w *SetupWizard) ConfirmAI() error {
	if err := w.requireStep(StepAI); err != nil {
		return err
	}
	w.Step = StepReview
	return nil
}

// Restart discards the draft and returns to the welcome step
func (w *SetupWizard) Restart() {
	fresh := NewSetupWizard(w.GuildID)
	w.Step = fresh.Step
	w.Draft = fresh.Draft
}

// Confirm finishes the review step
func (w *SetupWizard) Confirm() error {
	if err := w.requireStep(StepReview); err != nil {
		return err
	}
	w.Step = StepDone
	return nil
}

// SetupService commits finished wizard drafts to the store
type SetupService struct {
	configRepo interfaces.GuildConfigRepository
	accessRepo interfaces.CommandAccessRepository
}

// NewSetupService creates a new setup service
func NewSetupService(
	configRepo interfaces.GuildConfigRepository,
	accessRepo interfaces.CommandAccessRepository,
) *SetupService {
	return &SetupService{
		configRepo: configRepo,
		accessRepo: accessRepo,
	}
}

// Commit persists a finished wizard draft. The caller wraps this in a
// single transaction so the draft lands atomically. A wizard that was
// skipped at the welcome screen only marks setup complete.
func (s *SetupService) Commit(ctx context.Context, w *SetupWizard) error {
	if w.Step != StepDone {
		return NewValidationError(fmt.Sprintf("wizard not finished, at step %s", w.Step))
	}

	config, err := s.configRepo.GetOrCreate(ctx, w.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %d: %w", w.GuildID, err)
	}

	for command, access := range w.Draft.Access {
		if err := s.accessRepo.SetAccess(ctx, w.GuildID, command, access); err != nil {
			return fmt.Errorf("failed to save access for %s: %w", command, err)
		}
	}

	config.SpamMaxMsgs = w.Draft.SpamMaxMsgs
	config.SpamMuteSecs = w.Draft.SpamMuteSecs
	config.ScanLimit = w.Draft.ScanLimit
	config.NukeDays = w.Draft.NukeDays
	config.AIModel = w.Draft.AIModel
	config.SetupComplete = true

	if err := s.configRepo.Update(ctx, config); err != nil {
		return fmt.Errorf("failed to save config for guild %d: %w", w.GuildID, err)
	}

	return nil
}
