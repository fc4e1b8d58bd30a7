package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"deptchat_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	users map[string]models.UserIdentity
}

func (d *fakeDirectory) Resolve(_ context.Context, userID string) (*models.UserIdentity, error) {
	identity, ok := d.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &identity, nil
}

type fakeConversationStore struct {
	messages  []models.Message
	appendErr error
}

func (s *fakeConversationStore) AppendMessage(_ context.Context, message *models.Message) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.messages = append(s.messages, *message)
	return nil
}

func (s *fakeConversationStore) MarkConversationRead(_ context.Context, viewerID, counterpartID string) error {
	for i := range s.messages {
		m := &s.messages[i]
		if !m.IsGroup() && m.ReceiverID == viewerID && m.SenderID == counterpartID {
			m.Read = true
		}
	}
	return nil
}

type fakeGroupDirectory struct {
	groups      map[string]*models.Group
	lastMessage map[string]string
}

func (d *fakeGroupDirectory) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	group, ok := d.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (d *fakeGroupDirectory) SetLastMessage(_ context.Context, groupID, messageID string) error {
	if d.lastMessage == nil {
		d.lastMessage = make(map[string]string)
	}
	d.lastMessage[groupID] = messageID
	return nil
}

type fakeNotificationStore struct {
	notifications []models.Notification
	createErr     error
}

func (s *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("n-%d", len(s.notifications)+1)
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *fakeNotificationStore) CreateBatch(_ context.Context, notifications []models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	for i := range notifications {
		if notifications[i].NotificationID == "" {
			notifications[i].NotificationID = fmt.Sprintf("n-%d", len(s.notifications)+1)
		}
		s.notifications = append(s.notifications, notifications[i])
	}
	return nil
}

type routerFixture struct {
	chat          *ChatService
	directory     *fakeDirectory
	store         *fakeConversationStore
	groups        *fakeGroupDirectory
	notifications *fakeNotificationStore
	presence      *PresenceService
}

func newRouterFixture() *routerFixture {
	directory := &fakeDirectory{users: map[string]models.UserIdentity{
		"s1": {ID: "s1", Kind: models.KindStudent, FullName: "Ada Obi"},
		"s2": {ID: "s2", Kind: models.KindStudent, FullName: "Ben Eze"},
		"l1": {ID: "l1", Kind: models.KindLecturer, FullName: "Dr. Musa"},
	}}
	store := &fakeConversationStore{}
	groups := &fakeGroupDirectory{groups: map[string]*models.Group{}}
	notifications := &fakeNotificationStore{}
	presence := NewPresenceService()

	return &routerFixture{
		chat: &ChatService{
			Identity:      directory,
			Messages:      store,
			Groups:        groups,
			Notifications: notifications,
			Presence:      presence,
		},
		directory:     directory,
		store:         store,
		groups:        groups,
		notifications: notifications,
		presence:      presence,
	}
}

func TestSendDirectMessage_EmptyMessageRejected(t *testing.T) {
	f := newRouterFixture()

	_, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
		SenderID: "s1", SenderKind: models.KindStudent, ReceiverID: "s2",
	})

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.store.messages, "expected no persisted message")
	assert.Empty(t, f.notifications.notifications, "expected no notification")
}

func TestSendDirectMessage_UnknownReceiver(t *testing.T) {
	f := newRouterFixture()

	_, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
		SenderID: "s1", SenderKind: models.KindStudent, ReceiverID: "ghost", Text: "hello",
	})

	assert.ErrorIs(t, err, ErrReceiverNotFound)
	assert.Empty(t, f.store.messages)
	assert.Empty(t, f.notifications.notifications)
}

func TestSendDirectMessage_OfflineReceiverStillPersistsAndNotifies(t *testing.T) {
	f := newRouterFixture()

	receipt, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
		SenderID: "s1", SenderKind: models.KindStudent, ReceiverID: "l1", Text: "good morning",
	})
	require.NoError(t, err)

	require.Len(t, f.store.messages, 1)
	msg := f.store.messages[0]
	assert.Equal(t, "s1", msg.SenderID)
	assert.Equal(t, "l1", msg.ReceiverID)
	assert.Equal(t, models.KindLecturer, msg.ReceiverKind, "receiver kind resolved by directory")
	assert.False(t, msg.Read, "new messages start unread")

	assert.Equal(t, QueuedOnly, receipt.MessageDelivery)
	assert.Equal(t, QueuedOnly, receipt.NotificationDelivery)
	require.NotNil(t, receipt.Notification)
	require.Len(t, f.notifications.notifications, 1)
	assert.Equal(t, "l1", f.notifications.notifications[0].RecipientID)
	assert.Equal(t, models.NotificationTypeMessage, f.notifications.notifications[0].Type)
}

func TestSendDirectMessage_OnlineReceiverGetsLiveEvents(t *testing.T) {
	f := newRouterFixture()
	receiverConn := &fakeConn{id: "c-recv"}
	senderConn := &fakeConn{id: "c-send"}
	f.presence.Set("l1", receiverConn)
	f.presence.Set("s1", senderConn)

	receipt, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
		SenderID: "s1", SenderKind: models.KindStudent, ReceiverID: "l1", Image: "chat-images/x.png",
	})
	require.NoError(t, err)

	assert.Equal(t, DeliveredLive, receipt.MessageDelivery)
	assert.Equal(t, DeliveredLive, receipt.NotificationDelivery)
	assert.Equal(t, []string{EventReceiveMessage, EventNewNotification}, receiverConn.eventNames())
	assert.Equal(t, []string{EventMessageSent}, senderConn.eventNames())

	require.NotNil(t, receipt.Notification)
	assert.Equal(t, "New message from Ada Obi", receipt.Notification.Title)
	assert.Equal(t, "Sent an image", receipt.Notification.Message, "image-only messages get the placeholder body")
}

func TestSendDirectMessage_NotificationFailureDoesNotRollBack(t *testing.T) {
	f := newRouterFixture()
	f.notifications.createErr = errors.New("table unavailable")

	receipt, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
		SenderID: "s1", SenderKind: models.KindStudent, ReceiverID: "s2", Text: "hi",
	})

	require.NoError(t, err, "notification failure is best-effort")
	assert.Len(t, f.store.messages, 1, "message stays persisted")
	assert.Nil(t, receipt.Notification)
}

func TestSendDirectMessage_PersistFailureAborts(t *testing.T) {
	f := newRouterFixture()
	f.store.appendErr = errors.New("storage down")
	receiverConn := &fakeConn{id: "c-recv"}
	f.presence.Set("s2", receiverConn)

	_, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
		SenderID: "s1", SenderKind: models.KindStudent, ReceiverID: "s2", Text: "hi",
	})

	assert.Error(t, err)
	assert.Empty(t, receiverConn.events, "no emission without a durable message")
	assert.Empty(t, f.notifications.notifications)
}

func testGroup() *models.Group {
	return &models.Group{
		GroupID: "g1",
		Name:    "CSC 400",
		Members: []models.GroupMember{
			{UserID: "s1", Kind: models.KindStudent},
			{UserID: "s2", Kind: models.KindStudent},
			{UserID: "l1", Kind: models.KindLecturer},
			{UserID: "s3", Kind: models.KindStudent},
		},
	}
}

func TestSendGroupMessage_FanOut(t *testing.T) {
	f := newRouterFixture()
	f.groups.groups["g1"] = testGroup()

	// Sender and one other member online; two members offline.
	senderConn := &fakeConn{id: "c1"}
	memberConn := &fakeConn{id: "c2"}
	f.presence.Set("s1", senderConn)
	f.presence.Set("l1", memberConn)

	receipt, err := f.chat.SendGroupMessage(context.Background(), GroupMessageInput{
		GroupID: "g1", SenderID: "s1", SenderKind: models.KindStudent, Text: "lecture moved to 10am",
	})
	require.NoError(t, err)

	require.Len(t, f.store.messages, 1, "exactly one message per group send")
	assert.Equal(t, "g1", f.store.messages[0].GroupID)
	assert.Empty(t, f.store.messages[0].ReceiverID, "group messages carry no receiver")

	assert.Len(t, f.notifications.notifications, 3, "one notification per member excluding the sender")
	for _, n := range f.notifications.notifications {
		assert.NotEqual(t, "s1", n.RecipientID)
		assert.Equal(t, models.NotificationTypeGroupMessage, n.Type)
		assert.Equal(t, "New message in CSC 400", n.Title)
	}

	assert.ElementsMatch(t, []string{"s1", "l1"}, receipt.DeliveredTo, "live emission to online members, sender included")
	assert.Equal(t, []string{EventGroupMessageReceived}, senderConn.eventNames())
	assert.Equal(t, []string{EventGroupMessageReceived, EventNewNotification}, memberConn.eventNames())
	assert.Equal(t, 3, receipt.NotificationCount)
	assert.Equal(t, []string{"l1"}, receipt.NotifiedLive)
}

func TestSendGroupMessage_NonMemberRejected(t *testing.T) {
	f := newRouterFixture()
	f.groups.groups["g1"] = testGroup()

	_, err := f.chat.SendGroupMessage(context.Background(), GroupMessageInput{
		GroupID: "g1", SenderID: "outsider", SenderKind: models.KindStudent, Text: "hello",
	})

	assert.ErrorIs(t, err, ErrNotAMember)
	assert.Empty(t, f.store.messages, "expected zero persisted messages")
	assert.Empty(t, f.notifications.notifications, "expected zero notifications")
}

func TestSendGroupMessage_GroupNotFound(t *testing.T) {
	f := newRouterFixture()

	_, err := f.chat.SendGroupMessage(context.Background(), GroupMessageInput{
		GroupID: "missing", SenderID: "s1", SenderKind: models.KindStudent, Text: "hello",
	})

	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestSendGroupMessage_UpdatesLastMessagePointer(t *testing.T) {
	f := newRouterFixture()
	f.groups.groups["g1"] = testGroup()

	receipt, err := f.chat.SendGroupMessage(context.Background(), GroupMessageInput{
		GroupID: "g1", SenderID: "s1", SenderKind: models.KindStudent, Text: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, receipt.Message.MessageID, f.groups.lastMessage["g1"])
}

func TestSendMessages_HistoryPreservesSendOrder(t *testing.T) {
	f := newRouterFixture()

	for _, text := range []string{"m1", "m2", "m3"} {
		_, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
			SenderID: "s1", SenderKind: models.KindStudent, ReceiverID: "s2", Text: text,
		})
		require.NoError(t, err)
	}

	require.Len(t, f.store.messages, 3)
	for i, want := range []string{"m1", "m2", "m3"} {
		assert.Equal(t, want, f.store.messages[i].Text)
	}
	for i := 1; i < len(f.store.messages); i++ {
		assert.LessOrEqual(t, f.store.messages[i-1].CreatedAt, f.store.messages[i].CreatedAt,
			"createdAt must be non-decreasing in send order")
	}
}

func TestMarkConversationRead_UnreadCountsTransition(t *testing.T) {
	f := newRouterFixture()

	send := func(text string) {
		_, err := f.chat.SendDirectMessage(context.Background(), DirectMessageInput{
			SenderID: "s2", SenderKind: models.KindStudent, ReceiverID: "s1", Text: text,
		})
		require.NoError(t, err)
	}

	send("one")
	send("two")
	assert.Equal(t, map[string]int{"s2": 2}, countUnreadBySender(f.store.messages, "s1"))

	require.NoError(t, f.chat.MarkConversationRead(context.Background(), "s1", "s2"))
	assert.Empty(t, countUnreadBySender(f.store.messages, "s1"), "all messages read after markRead")

	send("three")
	assert.Equal(t, map[string]int{"s2": 1}, countUnreadBySender(f.store.messages, "s1"),
		"a new inbound message brings the count to exactly 1")
}

func TestEmitNotification_DurableFirstThenLivePush(t *testing.T) {
	f := newRouterFixture()

	n := models.Notification{
		RecipientID:   "s2",
		RecipientKind: models.KindStudent,
		Type:          models.NotificationTypeAnnouncement,
		Title:         "Seminar",
		Message:       "Friday 2pm",
	}

	state, err := f.chat.EmitNotification(context.Background(), &n)
	require.NoError(t, err)
	assert.Equal(t, QueuedOnly, state, "offline recipient gets a queued record only")
	assert.Len(t, f.notifications.notifications, 1)

	conn := &fakeConn{id: "c1"}
	f.presence.Set("s2", conn)

	n2 := n
	n2.NotificationID = ""
	state, err = f.chat.EmitNotification(context.Background(), &n2)
	require.NoError(t, err)
	assert.Equal(t, DeliveredLive, state)
	assert.Equal(t, []string{EventNewNotification}, conn.eventNames())
}

func TestEmitNotification_StoreFailure(t *testing.T) {
	f := newRouterFixture()
	f.notifications.createErr = errors.New("table unavailable")
	conn := &fakeConn{id: "c1"}
	f.presence.Set("s2", conn)

	n := models.Notification{RecipientID: "s2", Type: models.NotificationTypeAnnouncement, Title: "t", Message: "m"}
	_, err := f.chat.EmitNotification(context.Background(), &n)

	assert.Error(t, err)
	assert.Empty(t, conn.events, "no live push without a durable record")
}
