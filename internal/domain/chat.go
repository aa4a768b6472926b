package domain

const (
	// ChatLogCap is the bounded chat history length; spec §9 notes the
	// source never enforced a cap and fixes it here at 200.
	ChatLogCap = 200
	// MaxChatTextLen bounds a single message's text length.
	MaxChatTextLen = 1000

	SystemAuthorID = "system"
)

type ChatMessageKind string

const (
	ChatKindMessage ChatMessageKind = "message"
	ChatKindSystem  ChatMessageKind = "system"
)

// ChatMessage is immutable once appended, except for hard delete by its
// author or the room host.
type ChatMessage struct {
	ID         string
	AuthorID   string // connection ID, or SystemAuthorID
	AuthorName string
	Avatar     string
	Text       string
	Timestamp  int64
	Kind       ChatMessageKind
}
