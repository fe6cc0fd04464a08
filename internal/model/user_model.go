package model

import (
	"time"

	"github.com/google/uuid"
)

// Collaborator tables. Their CRUD belongs to the platform's catalog services;
// this engine only reads them for ownership and membership checks.

type User struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `gorm:"type:varchar(255);unique;not null"`
	FullName  string    `gorm:"type:varchar(200);not null"`
	Role      string    `gorm:"type:varchar(20);not null;default:'STUDENT'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

type StudyGroup struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `gorm:"type:varchar(200);not null"`
	CreatorId uuid.UUID  `gorm:"type:uuid;not null"`
	CourseId  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (StudyGroup) TableName() string {
	return "study_groups"
}

type GroupMember struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_group_members_group_user,priority:1"`
	UserId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_group_members_group_user,priority:2;index"`
	JoinedAt time.Time `gorm:"not null"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

type Course struct {
	Id    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title string    `gorm:"type:varchar(200);not null"`
}

func (Course) TableName() string {
	return "courses"
}
