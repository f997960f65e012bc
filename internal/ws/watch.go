package ws

import (
	"encoding/json"
	"log"

	"chatlink-service/internal/models"
)

// WatchRelay implements the watch-together protocol as a pure event
// relay. The server holds no session state: request, response and
// transport controls are forwarded to the named target and the
// authoritative playback state lives client-side. Consequently the
// relay does not validate that a control's target is an accepted
// partner, and no end-session frame exists.
type WatchRelay struct {
	router *Router
}

// NewWatchRelay constructs a WatchRelay.
func NewWatchRelay(router *Router) *WatchRelay {
	return &WatchRelay{router: router}
}

type watchRequestFrame struct {
	To       int64  `json:"to"`
	From     string `json:"from"`
	FromID   int64  `json:"fromId"`
	VideoURL string `json:"videoUrl"`
}

type watchResponseFrame struct {
	To       int64 `json:"to"`
	Accepted bool  `json:"accepted"`
}

type startVideoSessionFrame struct {
	To       int64  `json:"to"`
	From     int64  `json:"from"`
	VideoURL string `json:"videoUrl"`
}

type videoControlFrame struct {
	To          int64   `json:"to"`
	Action      string  `json:"action"`
	CurrentTime float64 `json:"currentTime"`
}

// Handle dispatches one inbound client frame. Unknown events and
// malformed payloads are dropped; the protocol has no error replies.
func (w *WatchRelay) Handle(frame Frame) {
	switch frame.Event {
	case models.FrameWatchRequest:
		var req watchRequestFrame
		if !decode(frame, &req) {
			return
		}
		w.router.ToUser(req.To, models.EventWatchRequest, models.WatchRequestEvent{
			VideoURL: req.VideoURL,
			From:     req.From,
			FromID:   req.FromID,
		})
	case models.FrameWatchResponse:
		var resp watchResponseFrame
		if !decode(frame, &resp) {
			return
		}
		w.router.ToUser(resp.To, models.EventWatchResponse, models.WatchResponseEvent{Accepted: resp.Accepted})
	case models.FrameStartVideoSession:
		var start startVideoSessionFrame
		if !decode(frame, &start) {
			return
		}
		// Both sides resolve independently: the initiator and the
		// accepter are different live connections.
		payload := models.StartVideoSessionEvent{VideoURL: start.VideoURL}
		w.router.ToUser(start.To, models.EventStartVideoSession, payload)
		w.router.ToUser(start.From, models.EventStartVideoSession, payload)
	case models.FrameVideoControl:
		var ctrl videoControlFrame
		if !decode(frame, &ctrl) {
			return
		}
		w.router.ToUser(ctrl.To, models.EventVideoControl, models.VideoControlEvent{
			Action:      ctrl.Action,
			CurrentTime: ctrl.CurrentTime,
		})
	}
}

func decode(frame Frame, dst any) bool {
	if err := json.Unmarshal(frame.Data, dst); err != nil {
		log.Printf("invalid %s frame: %v", frame.Event, err)
		return false
	}
	return true
}
