package memory

import (
	"sort"
	"strings"

	"studysync-be/internal/entity"
	"studysync-be/internal/repository/specification"
)

// The memory repositories interpret the same specification values the GORM
// layer feeds into SQL. Only the specifications the services actually use are
// understood; an unknown one matches nothing so a test fails loudly instead
// of silently ignoring a filter.

func sessionMatches(s *entity.Session, spec specification.Specification) bool {
	switch sp := spec.(type) {
	case specification.ByID:
		return s.Id == sp.ID
	case specification.ByOwner:
		return s.OwnerId == sp.OwnerID
	case specification.NotCancelled:
		return s.Status != entity.SessionStatusCancelled
	case specification.OverlappingWindow:
		return s.Overlaps(sp.Start, sp.End)
	case specification.OrderBy, specification.Pagination:
		return true
	default:
		return false
	}
}

func participantMatches(p *entity.Participant, spec specification.Specification) bool {
	switch sp := spec.(type) {
	case specification.ByID:
		return p.Id == sp.ID
	case specification.BySession:
		return p.SessionId == sp.SessionID
	case specification.ByUser:
		return p.UserId == sp.UserID
	case specification.OrderBy, specification.Pagination:
		return true
	default:
		return false
	}
}

func messageMatches(m *entity.Message, spec specification.Specification) bool {
	if m.DeletedAt != nil {
		return false
	}
	switch sp := spec.(type) {
	case specification.ByID:
		return m.Id == sp.ID
	case specification.ByGroup:
		return m.GroupId == sp.GroupID
	case specification.Pinned:
		return m.IsPinned
	case specification.OrderBy, specification.Pagination:
		return true
	default:
		return false
	}
}

func receiptMatches(r *entity.Receipt, spec specification.Specification) bool {
	switch sp := spec.(type) {
	case specification.ByID:
		return r.Id == sp.ID
	case specification.ByMessage:
		return r.MessageId == sp.MessageID
	case specification.ByRecipient:
		return r.RecipientId == sp.RecipientID
	case specification.Unread:
		return !r.IsRead
	case specification.OrderBy, specification.Pagination:
		return true
	default:
		return false
	}
}

func userMatches(u *entity.User, spec specification.Specification) bool {
	switch sp := spec.(type) {
	case specification.ByID:
		return u.Id == sp.ID
	case specification.ByIDs:
		for _, id := range sp.IDs {
			if u.Id == id {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func groupMatches(g *entity.StudyGroup, spec specification.Specification) bool {
	switch sp := spec.(type) {
	case specification.ByID:
		return g.Id == sp.ID
	default:
		return false
	}
}

// orderAndPage applies OrderBy created_at plus Pagination, mirroring how the
// SQL layer treats the same specifications.
func orderAndPage[T any](items []*T, createdAt func(*T) int64, specs []specification.Specification) []*T {
	for _, spec := range specs {
		if ob, ok := spec.(specification.OrderBy); ok && strings.Contains(ob.Field, "created_at") {
			sort.SliceStable(items, func(i, j int) bool {
				if ob.Desc {
					return createdAt(items[i]) > createdAt(items[j])
				}
				return createdAt(items[i]) < createdAt(items[j])
			})
		}
	}
	for _, spec := range specs {
		if pg, ok := spec.(specification.Pagination); ok {
			start := pg.Offset
			if start > len(items) {
				start = len(items)
			}
			end := start + pg.Limit
			if pg.Limit <= 0 || end > len(items) {
				end = len(items)
			}
			items = items[start:end]
		}
	}
	return items
}
