package models

import "time"

// UserSummary is the public projection of a user embedded in other resources.
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Avatar     string `json:"avatar"`
	IsVerified bool   `json:"isVerified"`
}

// Profile is a user with derived counts. Email and password never appear here.
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	Bio            string    `json:"bio"`
	Avatar         string    `json:"avatar"`
	IsVerified     bool      `json:"isVerified"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	PostCount      int64     `json:"postCount"`
	IsFollowing    bool      `json:"isFollowing"`
	JoinDate       time.Time `json:"joinDate"`
}

// PostView is a post as seen by a particular viewer.
type PostView struct {
	ID        string      `json:"id"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	Image     *string     `json:"image"`
	Images    []string    `json:"images"`
	Hashtags  []string    `json:"hashtags"`
	Likes     int         `json:"likes"`
	Comments  int         `json:"comments"`
	IsLiked   bool        `json:"isLiked"`
	IsEdited  bool        `json:"isEdited"`
	CreatedAt time.Time   `json:"createdAt"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID        string      `json:"id"`
	User      UserSummary `json:"user"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PostDetail is a single post with its comment thread.
type PostDetail struct {
	PostView
	CommentList []CommentView `json:"commentList"`
}

// FeedPage is one page of posts.
type FeedPage struct {
	Posts       []PostView `json:"posts"`
	CurrentPage int        `json:"currentPage"`
	HasMore     bool       `json:"hasMore"`
}

// LikeState is the result of a like mutation.
type LikeState struct {
	IsLiked bool `json:"isLiked"`
	Likes   int  `json:"likes"`
}

// NotificationView is a notification with the sender resolved.
type NotificationView struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	From      UserSummary      `json:"from"`
	Post      *string          `json:"post,omitempty"`
	Read      bool             `json:"read"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationPage is one page of a recipient's notifications.
type NotificationPage struct {
	Notifications []NotificationView `json:"notifications"`
	UnreadCount   int64              `json:"unreadCount"`
	CurrentPage   int                `json:"currentPage"`
	HasMore       bool               `json:"hasMore"`
}
