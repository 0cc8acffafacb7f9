package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/notify"
	repomocks "tasktracker/internal/repositories/mocks"
)

var testNow = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, t *models.Task, previous models.TaskStatus) (notify.Result, bool) {
	args := m.Called(ctx, t, previous)
	return args.Get(0).(notify.Result), args.Bool(1)
}

// recordingSender captures dispatches made through a real StatusNotifier.
type recordingSender struct {
	userIDs []int64
	msgs    []notify.Message
	panics  bool
}

func (r *recordingSender) Dispatch(_ context.Context, userID int64, msg notify.Message) notify.Result {
	if r.panics {
		panic("dispatcher blew up")
	}
	r.userIDs = append(r.userIDs, userID)
	r.msgs = append(r.msgs, msg)
	return notify.Result{UserID: userID}
}

func pendingTask() *models.Task {
	return &models.Task{ID: 7, AssigneeID: 3, Name: "budget", Status: models.StatusPending}
}

func TestUpdateStatusNotifiesAfterPersist(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockTaskRepository(ctrl)
	notifier := &MockNotifier{}
	svc := NewTaskService(repo, notifier, clock.NewManual(testNow), quietLogger())

	persisted := false
	gomock.InOrder(
		repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(pendingTask(), nil),
		repo.EXPECT().UpdateStatus(gomock.Any(), int64(7), models.StatusInProgress, "started", testNow).
			DoAndReturn(func(context.Context, int64, models.TaskStatus, string, time.Time) error {
				persisted = true
				return nil
			}),
		repo.EXPECT().FindByID(gomock.Any(), int64(7)).
			Return(&models.Task{ID: 7, AssigneeID: 3, Name: "budget", Status: models.StatusInProgress, Comments: "started"}, nil),
	)
	notifier.On("NotifyStatusChange", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
		return task.Status == models.StatusInProgress
	}), models.StatusPending).
		Run(func(mock.Arguments) { assert.True(t, persisted, "notified before the status was stored") }).
		Return(notify.Result{}, true).Once()

	got, err := svc.UpdateStatus(context.Background(), 7, models.StatusInProgress, "  started ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, "started", got.Comments)
	notifier.AssertExpectations(t)
}

func TestUpdateStatusPersistFailureSkipsNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockTaskRepository(ctrl)
	notifier := &MockNotifier{}
	svc := NewTaskService(repo, notifier, clock.NewManual(testNow), quietLogger())

	repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(pendingTask(), nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), int64(7), models.StatusCompleted, "", testNow).
		Return(errors.New("deadlock detected"))

	_, err := svc.UpdateStatus(context.Background(), 7, models.StatusCompleted, "")
	require.Error(t, err)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockTaskRepository(ctrl)
	svc := NewTaskService(repo, &MockNotifier{}, clock.NewManual(testNow), quietLogger())

	_, err := svc.UpdateStatus(context.Background(), 7, models.TaskStatus("ARCHIVED"), "")
	assert.True(t, errs.Is(err, errs.ErrInvalidInput))

	repo.EXPECT().FindByID(gomock.Any(), int64(99)).Return(nil, errs.NotFound("task", 99))
	_, err = svc.UpdateStatus(context.Background(), 99, models.StatusCompleted, "")
	assert.True(t, errs.Is(err, errs.ErrNotFound))
}

func TestUpdateStatusMessageCarriesBothStates(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockTaskRepository(ctrl)
	sender := &recordingSender{}
	svc := NewTaskService(repo, notify.NewStatusNotifier(sender, quietLogger()), clock.NewManual(testNow), quietLogger())

	repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(pendingTask(), nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), int64(7), models.StatusInProgress, "", testNow).Return(nil)
	repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(nil, errors.New("replica lag"))

	got, err := svc.UpdateStatus(context.Background(), 7, models.StatusInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status, "falls back to the local copy")

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, []int64{3}, sender.userIDs)
	assert.Equal(t, "status of task 'budget' changed from 'PENDING' to 'IN_PROGRESS'", sender.msgs[0].Body)
}

func TestUpdateStatusSucceedsWhenDispatchPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockTaskRepository(ctrl)
	svc := NewTaskService(repo, notify.NewStatusNotifier(&recordingSender{panics: true}, quietLogger()), clock.NewManual(testNow), quietLogger())

	repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(pendingTask(), nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), int64(7), models.StatusCompleted, "", testNow).Return(nil)
	repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(&models.Task{ID: 7, AssigneeID: 3, Status: models.StatusCompleted}, nil)

	got, err := svc.UpdateStatus(context.Background(), 7, models.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestUpdateNotifiesOnlyOnStatusChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockTaskRepository(ctrl)
	notifier := &MockNotifier{}
	svc := NewTaskService(repo, notifier, clock.NewManual(testNow), quietLogger())

	repo.EXPECT().FindByID(gomock.Any(), int64(7)).
		DoAndReturn(func(context.Context, int64) (*models.Task, error) { return pendingTask(), nil }).
		Times(2)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	notifier.On("NotifyStatusChange", mock.Anything, mock.Anything, models.StatusPending).Return(notify.Result{}, true).Once()

	_, err := svc.Update(context.Background(), 7, &models.Task{Name: "budget v2", AssigneeID: 3})
	require.NoError(t, err)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything, mock.Anything)

	got, err := svc.Update(context.Background(), 7, &models.Task{AssigneeID: 3, Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, "budget", got.Name, "blank name keeps the old one")
	assert.Equal(t, testNow, got.UpdatedAt)
	notifier.AssertExpectations(t)
}

func TestCreateTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repomocks.NewMockTaskRepository(ctrl)
	svc := NewTaskService(repo, &MockNotifier{}, clock.NewManual(testNow), quietLogger())

	_, err := svc.Create(context.Background(), &models.Task{Name: "   "})
	assert.True(t, errs.Is(err, errs.ErrInvalidInput))

	repo.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, task *models.Task) error {
		task.ID = 11
		return nil
	})
	got, err := svc.Create(context.Background(), &models.Task{Name: " plan ", AssigneeID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, "plan", got.Name)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, testNow, got.CreatedAt)
}
