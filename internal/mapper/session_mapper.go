package mapper

import (
	"studysync-be/internal/entity"
	"studysync-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	updatedAt := s.UpdatedAt
	return &entity.Session{
		Id:                  s.Id,
		OwnerId:             s.OwnerId,
		StudentId:           s.StudentId,
		GroupId:             s.GroupId,
		CourseId:            s.CourseId,
		Type:                entity.SessionType(s.Type),
		Status:              entity.SessionStatus(s.Status),
		Title:               s.Title,
		ScheduledStart:      s.ScheduledStart,
		ScheduledEnd:        s.ScheduledEnd,
		ActualStart:         s.ActualStart,
		ActualEnd:           s.ActualEnd,
		Summary:             s.Summary,
		MaxParticipants:     s.MaxParticipants,
		CurrentParticipants: s.CurrentParticipants,
		CancelReason:        s.CancelReason,
		CancelledBy:         s.CancelledBy,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           &updatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	out := &model.Session{
		Id:                  s.Id,
		OwnerId:             s.OwnerId,
		StudentId:           s.StudentId,
		GroupId:             s.GroupId,
		CourseId:            s.CourseId,
		Type:                string(s.Type),
		Status:              string(s.Status),
		Title:               s.Title,
		ScheduledStart:      s.ScheduledStart,
		ScheduledEnd:        s.ScheduledEnd,
		ActualStart:         s.ActualStart,
		ActualEnd:           s.ActualEnd,
		Summary:             s.Summary,
		MaxParticipants:     s.MaxParticipants,
		CurrentParticipants: s.CurrentParticipants,
		CancelReason:        s.CancelReason,
		CancelledBy:         s.CancelledBy,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = *s.UpdatedAt
	}
	return out
}

func (m *SessionMapper) ParticipantToEntity(p *model.Participant) *entity.Participant {
	if p == nil {
		return nil
	}
	return &entity.Participant{
		Id:           p.Id,
		SessionId:    p.SessionId,
		UserId:       p.UserId,
		Status:       entity.ParticipantStatus(p.Status),
		RegisteredAt: p.RegisteredAt,
		JoinedAt:     p.JoinedAt,
	}
}

func (m *SessionMapper) ParticipantToModel(p *entity.Participant) *model.Participant {
	if p == nil {
		return nil
	}
	return &model.Participant{
		Id:           p.Id,
		SessionId:    p.SessionId,
		UserId:       p.UserId,
		Status:       string(p.Status),
		RegisteredAt: p.RegisteredAt,
		JoinedAt:     p.JoinedAt,
	}
}
