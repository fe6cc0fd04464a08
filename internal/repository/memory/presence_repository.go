package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Presence is the ephemeral "who is live in this session room" record backing
// the session participants topic. Entries expire on their own so a crashed
// client disappears without an explicit disconnect.
type Presence struct {
	SessionId uuid.UUID
	UserId    uuid.UUID
	JoinedAt  time.Time
}

type PresenceRepository struct {
	cache *cache.Cache
}

func NewPresenceRepository(ttl time.Duration) *PresenceRepository {
	// Sweep expired entries at a fraction of the TTL.
	return &PresenceRepository{
		cache: cache.New(ttl, ttl/2),
	}
}

func presenceKey(sessionID, userID uuid.UUID) string {
	return sessionID.String() + ":" + userID.String()
}

func (r *PresenceRepository) Mark(sessionID, userID uuid.UUID) {
	r.cache.Set(presenceKey(sessionID, userID), &Presence{
		SessionId: sessionID,
		UserId:    userID,
		JoinedAt:  time.Now(),
	}, cache.DefaultExpiration)
}

// Refresh extends the TTL for a still-connected client.
func (r *PresenceRepository) Refresh(sessionID, userID uuid.UUID) {
	if x, found := r.cache.Get(presenceKey(sessionID, userID)); found {
		r.cache.Set(presenceKey(sessionID, userID), x, cache.DefaultExpiration)
	} else {
		r.Mark(sessionID, userID)
	}
}

func (r *PresenceRepository) Clear(sessionID, userID uuid.UUID) {
	r.cache.Delete(presenceKey(sessionID, userID))
}

// List returns the live occupants of a session room.
func (r *PresenceRepository) List(sessionID uuid.UUID) []*Presence {
	var out []*Presence
	for _, item := range r.cache.Items() {
		p, ok := item.Object.(*Presence)
		if ok && p.SessionId == sessionID {
			out = append(out, p)
		}
	}
	return out
}
