package repositories

import (
	"time"

	"wavvly/internal/models"
	apperrors "wavvly/pkg/errors"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	usersCollection         = "users"
	postsCollection         = "posts"
	notificationsCollection = "notifications"
)

type userDocument struct {
	ID         primitive.ObjectID   `bson:"_id"`
	Username   string               `bson:"username"`
	Email      string               `bson:"email"`
	Password   string               `bson:"password"`
	FullName   string               `bson:"fullName"`
	Bio        string               `bson:"bio"`
	Avatar     string               `bson:"avatar"`
	IsVerified bool                 `bson:"isVerified"`
	Followers  []primitive.ObjectID `bson:"followers"`
	Following  []primitive.ObjectID `bson:"following"`
	CreatedAt  time.Time            `bson:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt"`
}

type likeDocument struct {
	User      primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      primitive.ObjectID `bson:"user"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type postDocument struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Author    primitive.ObjectID   `bson:"author"`
	Content   string               `bson:"content"`
	Images    []string             `bson:"images"`
	Hashtags  []string             `bson:"hashtags"`
	Mentions  []primitive.ObjectID `bson:"mentions"`
	Likes     []likeDocument       `bson:"likes"`
	Comments  []commentDocument    `bson:"comments"`
	IsEdited  bool                 `bson:"isEdited"`
	EditedAt  *time.Time           `bson:"editedAt,omitempty"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type notificationDocument struct {
	ID        primitive.ObjectID  `bson:"_id"`
	Recipient primitive.ObjectID  `bson:"recipient"`
	Sender    primitive.ObjectID  `bson:"sender"`
	Type      string              `bson:"type"`
	Message   string              `bson:"message"`
	Post      *primitive.ObjectID `bson:"post,omitempty"`
	Read      bool                `bson:"read"`
	ReadAt    *time.Time          `bson:"readAt,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
}

// objectID parses a hex id. Malformed ids cannot name a stored document.
func objectID(id string, entity string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFound(entity + " not found")
	}
	return oid, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	return lo.FilterMap(ids, func(id string, _ int) (primitive.ObjectID, bool) {
		oid, err := primitive.ObjectIDFromHex(id)
		return oid, err == nil
	})
}

func hexes(oids []primitive.ObjectID) []string {
	return lo.Map(oids, func(oid primitive.ObjectID, _ int) string { return oid.Hex() })
}

// newObjectID reuses an id already assigned by the caller.
func newObjectID(id string) primitive.ObjectID {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return primitive.NewObjectID()
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:         d.ID.Hex(),
		Username:   d.Username,
		Email:      d.Email,
		Password:   d.Password,
		FullName:   d.FullName,
		Bio:        d.Bio,
		Avatar:     d.Avatar,
		IsVerified: d.IsVerified,
		Followers:  hexes(d.Followers),
		Following:  hexes(d.Following),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func userFromModel(u *models.User) *userDocument {
	return &userDocument{
		ID:         newObjectID(u.ID),
		Username:   u.Username,
		Email:      u.Email,
		Password:   u.Password,
		FullName:   u.FullName,
		Bio:        u.Bio,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
		Followers:  objectIDs(u.Followers),
		Following:  objectIDs(u.Following),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (d *postDocument) toModel() *models.Post {
	id := d.ID.Hex()
	return &models.Post{
		ID:       id,
		AuthorID: d.Author.Hex(),
		Content:  d.Content,
		Images:   nonNil(d.Images),
		Hashtags: nonNil(d.Hashtags),
		Mentions: hexes(d.Mentions),
		Likes: lo.Map(d.Likes, func(l likeDocument, _ int) models.Like {
			return models.Like{PostID: id, UserID: l.User.Hex(), CreatedAt: l.CreatedAt}
		}),
		Comments: lo.Map(d.Comments, func(c commentDocument, _ int) models.Comment {
			return models.Comment{ID: c.ID.Hex(), PostID: id, UserID: c.User.Hex(), Content: c.Content, CreatedAt: c.CreatedAt}
		}),
		IsEdited:  d.IsEdited,
		EditedAt:  d.EditedAt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d *notificationDocument) toModel() models.Notification {
	n := models.Notification{
		ID:          d.ID.Hex(),
		RecipientID: d.Recipient.Hex(),
		SenderID:    d.Sender.Hex(),
		Type:        models.NotificationType(d.Type),
		Message:     d.Message,
		IsRead:      d.Read,
		ReadAt:      d.ReadAt,
		CreatedAt:   d.CreatedAt,
	}
	if d.Post != nil {
		post := d.Post.Hex()
		n.PostID = &post
	}
	return n
}
