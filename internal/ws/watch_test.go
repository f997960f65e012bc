package ws

import (
	"encoding/json"
	"testing"

	"chatlink-service/internal/models"
)

func watchSetup(t *testing.T) (*WatchRelay, *Registry) {
	t.Helper()
	reg := NewRegistry()
	return NewWatchRelay(NewRouter(reg)), reg
}

func frameOf(t *testing.T, event string, payload string) Frame {
	t.Helper()
	return Frame{Event: event, Data: json.RawMessage(payload)}
}

func TestWatchRequestForwardedToTarget(t *testing.T) {
	relay, reg := watchSetup(t)
	requester := newMockConn("c1")
	target := newMockConn("c2")
	reg.Register(1, requester)
	reg.Register(2, target)

	relay.Handle(frameOf(t, models.FrameWatchRequest,
		`{"to":2,"from":"alice","fromId":1,"videoUrl":"https://v/1"}`))

	frames := target.frames()
	if len(frames) != 1 || frames[0].Event != models.EventWatchRequest {
		t.Fatalf("expected watch-request-received at target, got %v", frames)
	}
	got := frames[0].Payload.(models.WatchRequestEvent)
	if got.VideoURL != "https://v/1" || got.FromID != 1 || got.From != "alice" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if len(requester.frames()) != 0 {
		t.Fatalf("requester must not receive its own request")
	}
}

func TestWatchRequestOfflineTargetDropped(t *testing.T) {
	relay, reg := watchSetup(t)
	requester := newMockConn("c1")
	reg.Register(1, requester)

	relay.Handle(frameOf(t, models.FrameWatchRequest,
		`{"to":2,"from":"alice","fromId":1,"videoUrl":"https://v/1"}`))

	if len(requester.frames()) != 0 {
		t.Fatalf("offline target must be dropped silently")
	}
}

func TestWatchResponseRoutedToRequester(t *testing.T) {
	relay, reg := watchSetup(t)
	requester := newMockConn("c1")
	reg.Register(1, requester)

	relay.Handle(frameOf(t, models.FrameWatchResponse, `{"to":1,"accepted":true}`))

	frames := requester.frames()
	if len(frames) != 1 || frames[0].Event != models.EventWatchResponse {
		t.Fatalf("expected watch response at requester, got %v", frames)
	}
	if !frames[0].Payload.(models.WatchResponseEvent).Accepted {
		t.Fatalf("expected accepted=true")
	}
}

func TestStartVideoSessionReachesBothSides(t *testing.T) {
	relay, reg := watchSetup(t)
	initiator := newMockConn("c1")
	accepter := newMockConn("c2")
	reg.Register(1, initiator)
	reg.Register(2, accepter)

	relay.Handle(frameOf(t, models.FrameStartVideoSession,
		`{"to":2,"from":1,"videoUrl":"https://v/1"}`))

	for _, conn := range []*mockConn{initiator, accepter} {
		frames := conn.frames()
		if len(frames) != 1 || frames[0].Event != models.EventStartVideoSession {
			t.Fatalf("expected start-video-session at %s, got %v", conn.id, frames)
		}
		if frames[0].Payload.(models.StartVideoSessionEvent).VideoURL != "https://v/1" {
			t.Fatalf("unexpected payload %v", frames[0].Payload)
		}
	}
}

func TestVideoControlNoEcho(t *testing.T) {
	relay, reg := watchSetup(t)
	sender := newMockConn("c1")
	partner := newMockConn("c2")
	reg.Register(1, sender)
	reg.Register(2, partner)

	relay.Handle(frameOf(t, models.FrameVideoControl,
		`{"to":2,"action":"pause","currentTime":42.5}`))

	frames := partner.frames()
	if len(frames) != 1 || frames[0].Event != models.EventVideoControl {
		t.Fatalf("expected video control at partner, got %v", frames)
	}
	ctrl := frames[0].Payload.(models.VideoControlEvent)
	if ctrl.Action != "pause" || ctrl.CurrentTime != 42.5 {
		t.Fatalf("unexpected control %+v", ctrl)
	}
	if len(sender.frames()) != 0 {
		t.Fatalf("controls must not echo to the sender")
	}
}

func TestMalformedFrameIgnored(t *testing.T) {
	relay, reg := watchSetup(t)
	target := newMockConn("c2")
	reg.Register(2, target)

	relay.Handle(frameOf(t, models.FrameVideoControl, `{"to":"nope"}`))
	relay.Handle(frameOf(t, "unknown-event", `{}`))

	if len(target.frames()) != 0 {
		t.Fatalf("malformed and unknown frames must be dropped")
	}
}
