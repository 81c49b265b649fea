package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the activity stream
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventCommentCreated = "comment_created"
	EventPostLiked      = "post_liked"
	EventUserFollowed   = "user_followed"
)

// StreamActivity is the Redis stream every activity event is appended to.
const StreamActivity = "stream:activity"

// ActivityEvent records a state change made by a user. Only the fields that
// apply to the event type are set.
type ActivityEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ActorID   int64  `json:"actor_id"`

	PostID     int64 `json:"post_id,omitempty"`
	CommentID  int64 `json:"comment_id,omitempty"`
	LikeID     int64 `json:"like_id,omitempty"`
	FollowerID int64 `json:"follower_id,omitempty"`
	FollowedID int64 `json:"followed_id,omitempty"`
}

func newEvent(eventType string, actorID int64) ActivityEvent {
	return ActivityEvent{Type: eventType, Timestamp: time.Now().Unix(), ActorID: actorID}
}

func NewPostCreatedEvent(postID, ownerID int64) ActivityEvent {
	e := newEvent(EventPostCreated, ownerID)
	e.PostID = postID
	return e
}

func NewPostDeletedEvent(postID, ownerID int64) ActivityEvent {
	e := newEvent(EventPostDeleted, ownerID)
	e.PostID = postID
	return e
}

func NewCommentCreatedEvent(commentID, postID, ownerID int64) ActivityEvent {
	e := newEvent(EventCommentCreated, ownerID)
	e.CommentID = commentID
	e.PostID = postID
	return e
}

func NewPostLikedEvent(likeID, postID, ownerID int64) ActivityEvent {
	e := newEvent(EventPostLiked, ownerID)
	e.LikeID = likeID
	e.PostID = postID
	return e
}

// NewUserFollowedEvent is published when ownerID starts following followedID.
func NewUserFollowedEvent(followerID, ownerID, followedID int64) ActivityEvent {
	e := newEvent(EventUserFollowed, ownerID)
	e.FollowerID = followerID
	e.FollowedID = followedID
	return e
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is serialized to JSON in a "data" field.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an event from Redis stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
