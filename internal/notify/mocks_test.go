package notify

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"tasktracker/internal/models"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockEmail struct {
	mock.Mock
}

func (m *MockEmail) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type MockTelegram struct {
	mock.Mock
}

func (m *MockTelegram) SendMessage(chatID int64, text string) error {
	args := m.Called(chatID, text)
	return args.Error(0)
}

type MockSMS struct {
	mock.Mock
}

func (m *MockSMS) SendSMS(ctx context.Context, to, text string) error {
	args := m.Called(ctx, to, text)
	return args.Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Dispatch(ctx context.Context, userID int64, msg Message) Result {
	args := m.Called(ctx, userID, msg)
	r, _ := args.Get(0).(Result)
	return r
}

type recordingPusher struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (p *recordingPusher) Push(message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, message)
	return nil
}

func (p *recordingPusher) received() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.msgs...)
}
