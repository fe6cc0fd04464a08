package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleStudent UserRole = "STUDENT"
	UserRoleExpert  UserRole = "EXPERT"
	UserRoleAdmin   UserRole = "ADMIN"
)

// User is a collaborator entity: created and maintained elsewhere, read here
// for ownership, membership and display-name lookups.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Role      UserRole
	CreatedAt time.Time
}

func (u *User) IsAdmin() bool { return u.Role == UserRoleAdmin }

// StudyGroup is a collaborator entity; its CRUD lives outside this engine.
type StudyGroup struct {
	Id        uuid.UUID
	Name      string
	CreatorId uuid.UUID
	CourseId  *uuid.UUID
	CreatedAt time.Time
}

// GroupMember is the membership row for a study group.
type GroupMember struct {
	Id       uuid.UUID
	GroupId  uuid.UUID
	UserId   uuid.UUID
	JoinedAt time.Time
}

// Course is referenced by sessions for catalog context only.
type Course struct {
	Id    uuid.UUID
	Title string
}
