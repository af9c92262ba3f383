package models

import "time"

const (
	MaxPostLength    = 500
	MaxCommentLength = 200
	MaxPostImages    = 5
)

// Post is a piece of user content with its likes and comments.
type Post struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(24)"`
	AuthorID  string     `json:"authorId" gorm:"type:varchar(24);index;not null"`
	Content   string     `json:"content" gorm:"type:varchar(500);not null"`
	Images    []string   `json:"images" gorm:"serializer:json"`
	Hashtags  []string   `json:"hashtags" gorm:"serializer:json"`
	Mentions  []string   `json:"mentions" gorm:"serializer:json"` // user IDs
	Likes     []Like     `json:"likes" gorm:"foreignKey:PostID"`
	Comments  []Comment  `json:"comments" gorm:"foreignKey:PostID"`
	IsEdited  bool       `json:"isEdited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, like := range p.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

// Like records one user liking one post; a user likes a post at most once.
type Like struct {
	PostID    string    `json:"-" gorm:"primaryKey;type:varchar(24)"`
	UserID    string    `json:"user" gorm:"primaryKey;type:varchar(24)"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "post_likes" }

// Comment is an append-only reply on a post.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	PostID    string    `json:"-" gorm:"type:varchar(24);index;not null"`
	UserID    string    `json:"user" gorm:"type:varchar(24);not null"`
	Content   string    `json:"content" gorm:"type:varchar(200);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// PostHashtag indexes hashtags by post creation time for trending queries.
type PostHashtag struct {
	PostID    string    `gorm:"primaryKey;type:varchar(24)"`
	Tag       string    `gorm:"primaryKey;type:varchar(100);index"`
	CreatedAt time.Time `gorm:"index"`
}

// HashtagCount is one trending entry.
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}
