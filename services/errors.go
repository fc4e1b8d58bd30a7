package services

import "errors"

// Domain errors. Validation, not-found and authorization failures are all
// raised before any write; controllers and the socket gateway map them to
// status codes or error events.
var (
	// ErrEmptyMessage is returned when a send carries neither text nor image.
	ErrEmptyMessage = errors.New("cannot send empty message")

	// ErrReceiverNotFound is returned when the receiver id matches neither a
	// student nor a lecturer.
	ErrReceiverNotFound = errors.New("receiver not found")

	// ErrUserNotFound is returned by the identity directory for an unknown id.
	ErrUserNotFound = errors.New("user not found")

	// ErrGroupNotFound is returned when the target group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrNotAMember is returned when the sender is not in the group's member
	// list.
	ErrNotAMember = errors.New("not a group member")

	// ErrNotificationNotFound is returned when a notification does not exist
	// or does not belong to the requesting recipient.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrItemNotFound is the storage-level absence signal raised by
	// conditional updates and deletes.
	ErrItemNotFound = errors.New("item not found")
)
