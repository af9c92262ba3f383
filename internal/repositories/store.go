package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Store bundles the repositories of one backend.
type Store struct {
	Users         UserRepository
	Posts         PostRepository
	Notifications NotificationRepository
}

// NewGORMStore builds a Store over a SQL database.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:         NewGORMUserRepository(db),
		Posts:         NewGORMPostRepository(db),
		Notifications: NewGORMNotificationRepository(db),
	}
}

// NewMongoStore builds a Store over a MongoDB database. The locker
// serialises concurrent follow mutations of the same user pair.
func NewMongoStore(database *mongo.Database, locker PairLocker) *Store {
	return &Store{
		Users:         NewMongoUserRepository(database, locker),
		Posts:         NewMongoPostRepository(database),
		Notifications: NewMongoNotificationRepository(database),
	}
}
