package mock

import (
	"errors"
	"testing"

	"token-pulse/src/helpers"
	"token-pulse/src/models"
	"token-pulse/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingJobEmit(t *testing.T) {
	clock := utils.NewMockClock(epoch)
	job := NewListingJob(newTestFactory(t, clock), "@every 1h", quietLogger(), nil)

	_, ok := job.Emit()
	assert.False(t, ok, "emit before start must be ignored")

	var listed []models.Token
	require.NoError(t, job.Start(func(tok models.Token) { listed = append(listed, tok) }))
	require.NoError(t, job.Start(nil))
	assert.True(t, job.Running())

	tok, ok := job.Emit()
	require.True(t, ok)
	require.Len(t, listed, 1)
	assert.Equal(t, tok.ID, listed[0].ID)
	assert.Equal(t, models.CategoryNewPairs, tok.Category)

	job.Stop()
	job.Stop()
	assert.False(t, job.Running())
	_, ok = job.Emit()
	assert.False(t, ok)
}

func TestListingJobInvalidSchedule(t *testing.T) {
	job := NewListingJob(newTestFactory(t, utils.NewMockClock(epoch)), "every now and then", quietLogger(), nil)

	err := job.Start(func(models.Token) {})
	require.Error(t, err)

	var verr *helpers.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.False(t, job.Running())
}

func TestListingJobHandlerPanic(t *testing.T) {
	job := NewListingJob(newTestFactory(t, utils.NewMockClock(epoch)), "@every 1h", quietLogger(), nil)
	require.NoError(t, job.Start(func(models.Token) { panic("store closed") }))
	defer job.Stop()

	_, ok := job.Emit()
	assert.False(t, ok)
}
