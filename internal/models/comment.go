package models

import "time"

// Comment is either a root comment on a project or a reply. Replies share
// the id of their root comment as ReplyGroup.
type Comment struct {
	ID         string
	ProjectID  string
	Sender     string
	Message    string
	Likes      []string
	Dislikes   []string
	IsReply    bool
	HasReply   bool
	ReplyGroup string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Sender is the public part of a comment's author.
type Sender struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// CommentView is a comment as returned to clients.
type CommentView struct {
	ID            string    `json:"_id"`
	ProjectID     string    `json:"projectId"`
	Message       string    `json:"message"`
	Sender        *Sender   `json:"sender"`
	IsReply       bool      `json:"isReply"`
	HasReply      bool      `json:"hasReply"`
	TotalLikes    int       `json:"totalLikes"`
	TotalDislikes int       `json:"totalDislikes"`
	ReplyGroup    string    `json:"replyGroup,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AddCommentRequest is the JSON body for POST /comment.
type AddCommentRequest struct {
	ProjectID string `json:"projectId"`
	Message   string `json:"message"`
}

// ReplyCommentRequest is the JSON body for POST /comment/reply.
type ReplyCommentRequest struct {
	ProjectID string `json:"projectId"`
	GroupID   string `json:"groupId"`
	Message   string `json:"message"`
}

// LikeRequest is the JSON body for POST /like.
type LikeRequest struct {
	ProjectID string `json:"pid"`
}

// CommentLikeRequest is the JSON body for POST /like/comment.
type CommentLikeRequest struct {
	CommentID string `json:"cid"`
}
