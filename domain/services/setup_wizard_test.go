package services

import (
	"context"
	"testing"

	"sattbot/domain/entities"
	"sattbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSetupWizard_FullWalkthrough(t *testing.T) {
	t.Parallel()

	w := NewSetupWizard(1000)
	assert.Equal(t, StepWelcome, w.Step)
	assert.NotEqual(t, "", w.ID.String())

	require.NoError(t, w.Begin())
	assert.Equal(t, StepPermissions, w.Step)

	require.NoError(t, w.SetAccess("meme", entities.AccessAdminOnly))
	require.NoError(t, w.ConfirmPermissions())
	assert.Equal(t, StepModeration, w.Step)

	require.NoError(t, w.SetModeration(5, 120, 500, 30))
	require.NoError(t, w.ConfirmModeration())
	assert.Equal(t, StepAI, w.Step)

	require.NoError(t, w.SetAIModel("qwen/qwen-2.5-72b-instruct"))
	require.NoError(t, w.ConfirmAI())
	assert.Equal(t, StepReview, w.Step)

	require.NoError(t, w.Confirm())
	assert.Equal(t, StepDone, w.Step)

	assert.Equal(t, entities.AccessAdminOnly, w.Draft.Access["meme"])
	assert.Equal(t, 5, w.Draft.SpamMaxMsgs)
	assert.Equal(t, 120, w.Draft.SpamMuteSecs)
	assert.Equal(t, 500, w.Draft.ScanLimit)
	assert.Equal(t, 30, w.Draft.NukeDays)
	assert.Equal(t, "qwen/qwen-2.5-72b-instruct", w.Draft.AIModel)
}

func TestSetupWizard_SkipAllKeepsDefaults(t *testing.T) {
	t.Parallel()

	w := NewSetupWizard(1000)
	require.NoError(t, w.SkipAll())

	assert.Equal(t, StepDone, w.Step)
	assert.Equal(t, entities.DefaultSpamMaxMsgs, w.Draft.SpamMaxMsgs)
	assert.Equal(t, entities.DefaultCommandAccess["nuke"], w.Draft.Access["nuke"])
}

func TestSetupWizard_TransitionsRejectWrongStep(t *testing.T) {
	t.Parallel()

	w := NewSetupWizard(1000)

	var validationErr *ValidationError
	require.ErrorAs(t, w.SetAccess("meme", entities.AccessPublic), &validationErr)
	require.ErrorAs(t, w.SetModeration(1, 1, 1, 1), &validationErr)
	require.ErrorAs(t, w.SetAIModel("x"), &validationErr)
	require.ErrorAs(t, w.Confirm(), &validationErr)

	require.NoError(t, w.Begin())
	require.ErrorAs(t, w.Begin(), &validationErr)

	// Failed transitions never moved the machine
	assert.Equal(t, StepPermissions, w.Step)
}

func TestSetupWizard_ValidationLeavesDraftUntouched(t *testing.T) {
	t.Parallel()

	w := NewSetupWizard(1000)
	require.NoError(t, w.Begin())

	var validationErr *ValidationError
	require.ErrorAs(t, w.SetAccess("frobnicate", entities.AccessPublic), &validationErr)
	require.ErrorAs(t, w.SetAccess("meme", entities.AccessLevel("everyone")), &validationErr)

	require.NoError(t, w.ConfirmPermissions())
	require.ErrorAs(t, w.SetModeration(0, 60, 1000, 60), &validationErr)

	assert.Equal(t, entities.DefaultCommandAccess["meme"], w.Draft.Access["meme"])
	assert.Equal(t, entities.DefaultSpamMaxMsgs, w.Draft.SpamMaxMsgs)
}

func TestSetupWizard_RestartResetsDraft(t *testing.T) {
	t.Parallel()

	w := NewSetupWizard(1000)
	require.NoError(t, w.Begin())
	require.NoError(t, w.SetAccess("meme", entities.AccessRestricted))
	require.NoError(t, w.ConfirmPermissions())
	require.NoError(t, w.SetModeration(2, 2, 2, 2))

	w.Restart()

	assert.Equal(t, StepWelcome, w.Step)
	assert.Equal(t, entities.DefaultCommandAccess["meme"], w.Draft.Access["meme"])
	assert.Equal(t, entities.DefaultSpamMaxMsgs, w.Draft.SpamMaxMsgs)
	assert.Equal(t, int64(1000), w.GuildID)
}

func TestSetupService_Commit(t *testing.T) {
	t.Parallel()

	const guildID = int64(1000)

	t.Run("finished wizard persists draft and marks setup complete", func(t *testing.T) {
		t.Parallel()

		w := NewSetupWizard(guildID)
		require.NoError(t, w.Begin())
		require.NoError(t, w.SetAccess("meme", entities.AccessAdminOnly))
		require.NoError(t, w.ConfirmPermissions())
		require.NoError(t, w.SetModeration(5, 120, 500, 30))
		require.NoError(t, w.ConfirmModeration())
		require.NoError(t, w.ConfirmAI())
		require.NoError(t, w.Confirm())

		config := defaultTestConfig(guildID)
		configRepo := new(testhelpers.MockGuildConfigRepository)
		accessRepo := new(testhelpers.MockCommandAccessRepository)
		configRepo.On("GetOrCreate", context.Background(), guildID).Return(config, nil)
		accessRepo.On("SetAccess", context.Background(), guildID, mock.AnythingOfType("string"), mock.AnythingOfType("entities.AccessLevel")).
			Return(nil)
		configRepo.On("Update", context.Background(), mock.MatchedBy(func(c *entities.GuildConfig) bool {
			return c.SetupComplete && c.SpamMaxMsgs == 5 && c.SpamMuteSecs == 120 &&
				c.ScanLimit == 500 && c.NukeDays == 30 && c.AIModel == WizardAIModels[0].Model
		})).Return(nil)

		service := NewSetupService(configRepo, accessRepo)
		require.NoError(t, service.Commit(context.Background(), w))

		accessRepo.AssertNumberOfCalls(t, "SetAccess", len(entities.DefaultCommandAccess))
		configRepo.AssertExpectations(t)
	})

	t.Run("unfinished wizard rejected", func(t *testing.T) {
		t.Parallel()

		w := NewSetupWizard(guildID)
		require.NoError(t, w.Begin())

		configRepo := new(testhelpers.MockGuildConfigRepository)
		accessRepo := new(testhelpers.MockCommandAccessRepository)
		service := NewSetupService(configRepo, accessRepo)

		err := service.Commit(context.Background(), w)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		configRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
	})
}
