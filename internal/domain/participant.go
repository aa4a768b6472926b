package domain

import "strings"

const (
	MaxDisplayNameLen = 20
)

var namePool = []string{
	"Guest Otter", "Guest Falcon", "Guest Panda", "Guest Lynx",
	"Guest Heron", "Guest Badger", "Guest Kestrel", "Guest Marten",
}

var avatarTable = []string{
	"🦦", "🦅", "🐼", "🐈", "🦩", "🦡", "🦉", "🐿️", "🦫", "🦥",
	"🐧", "🐙", "🦜", "🐢", "🦎", "🐳",
}

// Participant is one connection inside one room. It carries no transport
// state; the hub owns the connection, the dispatcher owns the mapping.
type Participant struct {
	ConnectionID string
	DisplayName  string
	AvatarEmoji  string
	RoomCode     string
	JoinedAt     int64
}

// NewParticipant trims and length-caps the display name, assigning a name
// from the fixed pool when the trimmed input is empty, and derives a
// deterministic avatar from the final name — the same "derive a sane
// default from user input rather than rejecting it" shape as
// domain.NewUser in the teacher repo.
func NewParticipant(connID, roomCode, requestedName string, joinedAt int64, poolIndex int) *Participant {
	name := strings.TrimSpace(requestedName)
	if name == "" {
		name = namePool[poolIndex%len(namePool)]
	}
	if len(name) > MaxDisplayNameLen {
		name = name[:MaxDisplayNameLen]
	}
	return &Participant{
		ConnectionID: connID,
		DisplayName:  name,
		AvatarEmoji:  AvatarFor(name),
		RoomCode:     roomCode,
		JoinedAt:     joinedAt,
	}
}

// AvatarFor derives a stable emoji from a name via a simple sum-of-bytes
// hash — deterministic across calls and processes, no persistence needed.
func AvatarFor(name string) string {
	var sum int
	for i := 0; i < len(name); i++ {
		sum += int(name[i])
	}
	if len(name) == 0 {
		return avatarTable[0]
	}
	return avatarTable[sum%len(avatarTable)]
}
