package fanout

import (
	"context"
	"log"

	"chatlink-service/internal/cache"
	"chatlink-service/internal/models"
	"chatlink-service/internal/repositories"
	"chatlink-service/internal/ws"
)

// Fanout resolves the recipient set of message events and routes them.
// Callers persist first; routing is best-effort and never returns an
// error, so a message is considered sent once stored regardless of who
// was online.
type Fanout struct {
	router  *ws.Router
	groups  repositories.GroupRepository
	members *cache.GroupMembers
}

// New constructs a Fanout. members may be nil to disable caching.
func New(router *ws.Router, groups repositories.GroupRepository, members *cache.GroupMembers) *Fanout {
	return &Fanout{router: router, groups: groups, members: members}
}

// MessageSent routes newMessage to the recipients of a freshly
// persisted message. Direct messages go to the receiver only; the
// sender already holds the message from its own request. Group
// messages go to every member except the sender.
func (f *Fanout) MessageSent(ctx context.Context, msg models.Message) {
	if !msg.IsGroupMessage() {
		f.router.ToUser(*msg.ReceiverID, models.EventNewMessage, msg)
		return
	}

	members, err := f.memberSet(ctx, *msg.GroupID)
	if err != nil {
		log.Printf("fanout: member lookup for group %d failed: %v", *msg.GroupID, err)
		return
	}
	for _, memberID := range members {
		if memberID == msg.SenderID {
			continue
		}
		f.router.ToUser(memberID, models.EventNewMessage, msg)
	}
}

// MessageHardDeleted routes messageDeleted after a full removal, to
// the receiver or all group members, and additionally back to the
// acting user so their other open sessions reflect the delete.
func (f *Fanout) MessageHardDeleted(ctx context.Context, msg models.Message, actorID int64) {
	if msg.IsGroupMessage() {
		members, err := f.memberSet(ctx, *msg.GroupID)
		if err != nil {
			log.Printf("fanout: member lookup for group %d failed: %v", *msg.GroupID, err)
		} else {
			for _, memberID := range members {
				if memberID == actorID {
					continue
				}
				f.router.ToUser(memberID, models.EventMessageDeleted, msg.ID)
			}
		}
	} else {
		f.router.ToUser(*msg.ReceiverID, models.EventMessageDeleted, msg.ID)
	}
	f.router.ToUser(actorID, models.EventMessageDeleted, msg.ID)
}

// MessageSoftDeleted routes messageDeletedForMe to the acting user
// only; other participants still see the message.
func (f *Fanout) MessageSoftDeleted(actorID, messageID int64) {
	f.router.ToUser(actorID, models.EventMessageDeletedForMe, messageID)
}

func (f *Fanout) memberSet(ctx context.Context, groupID int64) ([]int64, error) {
	if members, ok := f.members.Get(ctx, groupID); ok {
		return members, nil
	}
	members, err := f.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	f.members.Set(ctx, groupID, members)
	return members, nil
}
