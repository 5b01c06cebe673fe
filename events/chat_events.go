package events

import (
	domain "github.com/V1per16/an0n-chat-render/domain/chat"
	"github.com/go-monolith/mono/pkg/helper"
)

// MessagePostedEvent is emitted after a new message has been committed to
// the message log. It carries the full author snapshot so consumers can
// build wire frames without another lookup.
type MessagePostedEvent struct {
	Message domain.Message `json:"message"`
	Author  domain.User    `json:"author"`
}

// MessageEditedEvent is emitted after a message's text has been overwritten
// in place. The original timestamp is retained.
type MessageEditedEvent struct {
	MessageID int64  `json:"message_id"`
	NewText   string `json:"new_text"`
}

// MessageDeletedEvent is emitted after a message has been removed from the log.
type MessageDeletedEvent struct {
	MessageID int64 `json:"message_id"`
}

// Event definitions for the chat domain.
// Publishing happens strictly after the storage mutation commits.
var (
	// MessagePostedV1 is published when a message is appended to the log.
	MessagePostedV1 = helper.EventDefinition[MessagePostedEvent](
		"chat", "MessagePosted", "v1",
	)

	// MessageEditedV1 is published when a message's text is edited.
	MessageEditedV1 = helper.EventDefinition[MessageEditedEvent](
		"chat", "MessageEdited", "v1",
	)

	// MessageDeletedV1 is published when a message is deleted.
	MessageDeletedV1 = helper.EventDefinition[MessageDeletedEvent](
		"chat", "MessageDeleted", "v1",
	)
)
