package services

import (
	"testing"

	"deptchat_server/models"

	"github.com/stretchr/testify/assert"
)

func TestSortNotificationsNewestFirst(t *testing.T) {
	notifications := []models.Notification{
		{NotificationID: "n1", CreatedAt: "2026-01-01T10:00:00Z"},
		{NotificationID: "n3", CreatedAt: "2026-01-03T10:00:00Z"},
		{NotificationID: "n2", CreatedAt: "2026-01-02T10:00:00Z"},
	}

	sortNotificationsNewestFirst(notifications)

	assert.Equal(t, "n3", notifications[0].NotificationID)
	assert.Equal(t, "n2", notifications[1].NotificationID)
	assert.Equal(t, "n1", notifications[2].NotificationID)
}

func TestPageNotifications(t *testing.T) {
	notifications := []models.Notification{
		{NotificationID: "n1"}, {NotificationID: "n2"}, {NotificationID: "n3"}, {NotificationID: "n4"},
	}

	t.Run("limit and skip", func(t *testing.T) {
		page := pageNotifications(notifications, 2, 1)
		assert.Len(t, page, 2)
		assert.Equal(t, "n2", page[0].NotificationID)
		assert.Equal(t, "n3", page[1].NotificationID)
	})

	t.Run("skip beyond length", func(t *testing.T) {
		assert.Empty(t, pageNotifications(notifications, 10, 99))
	})

	t.Run("zero limit returns the rest", func(t *testing.T) {
		page := pageNotifications(notifications, 0, 2)
		assert.Len(t, page, 2)
	})

	t.Run("negative skip treated as zero", func(t *testing.T) {
		page := pageNotifications(notifications, 2, -5)
		assert.Equal(t, "n1", page[0].NotificationID)
	})
}

func TestPrepareAssignsServerFields(t *testing.T) {
	s := &NotificationService{}

	n := models.Notification{RecipientID: "u1", Type: models.NotificationTypeMessage, Title: "t", Message: "m"}
	s.Prepare(&n)

	assert.NotEmpty(t, n.NotificationID)
	assert.NotEmpty(t, n.CreatedAt)

	// Existing server fields are preserved.
	preset := models.Notification{NotificationID: "fixed", CreatedAt: "2026-01-01T00:00:00Z"}
	s.Prepare(&preset)
	assert.Equal(t, "fixed", preset.NotificationID)
	assert.Equal(t, "2026-01-01T00:00:00Z", preset.CreatedAt)
}
