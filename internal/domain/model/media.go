package model

// PhotoMessage is the slice of an inbound Telegram photo update the media
// aggregator cares about. FileID references the highest-resolution size.
type PhotoMessage struct {
	MessageID int
	ChatID    int64
	UserID    int64
	FileID    string
	Caption   string
}

// MediaGroupRequest is the aggregated result of one Telegram media group:
// every photo of the group in arrival order plus the resolved caption.
type MediaGroupRequest struct {
	ID      string // ulid, for log correlation
	GroupID string
	ChatID  int64
	UserID  int64
	ReplyTo int // message id the answer should reply to
	Caption string
	FileIDs []string
}
