package models

import "time"

// Event names routed server -> client over the websocket channel.
const (
	EventOnlineUsers         = "online-users"
	EventNewMessage          = "newMessage"
	EventMessageDeleted      = "messageDeleted"
	EventMessageDeletedForMe = "messageDeletedForMe"
	EventNewNotification     = "newNotification"
	EventWatchRequest        = "watch-request-received"
	EventWatchResponse       = "watch-response-received"
	EventStartVideoSession   = "start-video-session-received"
	EventVideoControl        = "video-control-received"
)

// Event names accepted client -> server.
const (
	FrameWatchRequest      = "watch-request"
	FrameWatchResponse     = "watch-response"
	FrameStartVideoSession = "start-video-session"
	FrameVideoControl      = "video-control"
)

// NotificationEvent is the payload of newNotification.
type NotificationEvent struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// WatchRequestEvent is routed to the target of a watch-together request.
type WatchRequestEvent struct {
	VideoURL string `json:"videoUrl"`
	From     string `json:"from"`
	FromID   int64  `json:"fromId"`
}

// WatchResponseEvent is routed back to the requester.
type WatchResponseEvent struct {
	Accepted bool `json:"accepted"`
}

// StartVideoSessionEvent is routed to both participants on accept.
type StartVideoSessionEvent struct {
	VideoURL string `json:"videoUrl"`
}

// VideoControlEvent relays a play/pause/seek to the counterpart.
type VideoControlEvent struct {
	Action      string  `json:"action"`
	CurrentTime float64 `json:"currentTime"`
}
