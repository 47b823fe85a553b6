package directory

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, recipient domain.MemberID, a *domain.Announcement) error {
	args := m.Called(ctx, recipient, a)
	return args.Error(0)
}

func TestBroadcastPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.createGroup(t, "A")
	f.createGroup(t, "B")
	f.register(t, 1, "A", "a7")
	f.register(t, 2, "A", "")
	f.register(t, 3, "A", "")
	f.register(t, 4, "A", "")
	f.register(t, 5, "B", "")

	published := f.publish(t, 1, "exam moved")
	require.Equal(t, domain.OutcomeOK, published.Outcome)

	sender := new(mockSender)
	sender.On("Send", mock.Anything, domain.MemberID(2), published.Announcement).Return(nil)
	sender.On("Send", mock.Anything, domain.MemberID(3), published.Announcement).Return(stderrors.New("room closed"))
	sender.On("Send", mock.Anything, domain.MemberID(4), published.Announcement).Return(nil)

	report, err := f.svc.Broadcast(context.Background(), published.Announcement, sender)
	require.NoError(t, err)

	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, "A", report.GroupName)
	assert.ElementsMatch(t, []domain.MemberID{2, 4}, report.Delivered)
	require.Len(t, report.Failed, 1)
	assert.EqualError(t, report.Failed[3], "room closed")
	assert.Equal(t, 3, report.Attempted())

	sender.AssertExpectations(t)
	sender.AssertNotCalled(t, "Send", mock.Anything, domain.MemberID(1), mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, domain.MemberID(5), mock.Anything)
}

func TestBroadcastToAuthorOnlyGroup(t *testing.T) {
	f := newFixture(t)
	f.createGroup(t, "A")
	f.register(t, 1, "A", "a7")
	published := f.publish(t, 1, "hello")

	sender := new(mockSender)
	report, err := f.svc.Broadcast(context.Background(), published.Announcement, sender)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Attempted())
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
