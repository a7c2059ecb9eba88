package activity_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/tests/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func logsWithIDs(ids ...uint) []models.ActivityLog {
	logs := make([]models.ActivityLog, 0, len(ids))
	for _, id := range ids {
		logs = append(logs, models.ActivityLog{ID: id, UserID: "u-1", Action: "vehicles_create"})
	}
	return logs
}

func TestRetention_RejectsNonPositiveAge(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	r := activity.NewRetention(store, nil, 0)
	_, err := r.Cleanup(context.Background(), 0)
	assert.ErrorIs(t, err, activity.ErrInvalidRetention)
	_, err = r.Cleanup(context.Background(), -time.Hour)
	assert.ErrorIs(t, err, activity.ErrInvalidRetention)
}

func TestRetention_DeleteOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	var cutoff time.Time
	store.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c time.Time) (int64, error) {
			cutoff = c
			return 5, nil
		})

	before := time.Now()
	result, err := activity.NewRetention(store, nil, 0).Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.Deleted)
	assert.Zero(t, result.Archived)
	assert.Empty(t, result.ArchiveKeys)
	assert.Equal(t, cutoff, result.Cutoff)
	assert.WithinDuration(t, before.Add(-24*time.Hour), cutoff, time.Second)
}

func TestRetention_ArchivesInBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	archiver := &mocks.MockArchiver{}

	gomock.InOrder(
		store.EXPECT().FindOlderThan(gomock.Any(), gomock.Any(), uint(0), 2).Return(logsWithIDs(1, 2), nil),
		store.EXPECT().FindOlderThan(gomock.Any(), gomock.Any(), uint(2), 2).Return(logsWithIDs(5), nil),
		store.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).Return(int64(3), nil),
	)

	archiver.On("GetType").Return("aws_s3")
	archiver.On("Archive", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasSuffix(key, "part0001.jsonl")
	}), logsWithIDs(1, 2)).Return("backup/part1", nil).Once()
	archiver.On("Archive", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasSuffix(key, "part0002.jsonl")
	}), logsWithIDs(5)).Return("backup/part2", nil).Once()

	result, err := activity.NewRetention(store, archiver, 2).Cleanup(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Archived)
	assert.Equal(t, int64(3), result.Deleted)
	assert.Equal(t, []string{"backup/part1", "backup/part2"}, result.ArchiveKeys)
	archiver.AssertExpectations(t)
}

func TestRetention_ArchiveFailureKeepsData(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	archiver := &mocks.MockArchiver{}

	store.EXPECT().FindOlderThan(gomock.Any(), gomock.Any(), uint(0), 1000).Return(logsWithIDs(1), nil)
	// DeleteOlderThan 不应被调用
	archiver.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("access denied"))

	_, err := activity.NewRetention(store, archiver, 0).Cleanup(context.Background(), time.Hour)
	assert.Error(t, err)
	archiver.AssertExpectations(t)
}

func TestRetention_NothingToArchive(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	archiver := &mocks.MockArchiver{}

	store.EXPECT().FindOlderThan(gomock.Any(), gomock.Any(), uint(0), 1000).Return(nil, nil)
	store.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	result, err := activity.NewRetention(store, archiver, 0).Cleanup(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, result.Archived)
	assert.Zero(t, result.Deleted)
	archiver.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything)
}
