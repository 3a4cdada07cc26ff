package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	StudentRepository      *StudentRepository
	DocumentRepository     *DocumentRepository
	CourseRepository       *CourseRepository
	TokenRepository        *TokenRepository
	ActivityRepository     *ActivityRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		StudentRepository:      NewStudentRepository(db),
		DocumentRepository:     NewDocumentRepository(db),
		CourseRepository:       NewCourseRepository(db),
		TokenRepository:        NewTokenRepository(db),
		ActivityRepository:     NewActivityRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// statementBuilder is the squirrel builder every repository uses
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
