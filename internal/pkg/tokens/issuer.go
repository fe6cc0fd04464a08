package tokens

import "time"

// RoomClaims is the claim set embedded in a meeting room credential.
type RoomClaims struct {
	RoomName  string
	SubjectId string
	Moderator bool
}

// Issuer signs and verifies meeting room credentials. The meeting service is
// provider-agnostic; swapping the video vendor means swapping this
// implementation only.
type Issuer interface {
	Sign(claims RoomClaims, ttl time.Duration) (token string, expiresAt time.Time, err error)
	Verify(token string) (*RoomClaims, error)
}
