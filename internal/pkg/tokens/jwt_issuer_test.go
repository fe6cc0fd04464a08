package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	issuer := NewJWTIssuer("secret", "studysync-be", "studysync-meet")

	token, expiresAt, err := issuer.Sign(RoomClaims{
		RoomName:  "studysync-room",
		SubjectId: "user-123",
		Moderator: true,
	}, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "studysync-room", claims.RoomName)
	assert.Equal(t, "user-123", claims.SubjectId)
	assert.True(t, claims.Moderator)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTIssuer("secret", "studysync-be", "studysync-meet")
	other := NewJWTIssuer("different", "studysync-be", "studysync-meet")

	token, _, err := issuer.Sign(RoomClaims{RoomName: "room", SubjectId: "u"}, time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewJWTIssuer("secret", "studysync-be", "studysync-meet")

	token, _, err := issuer.Sign(RoomClaims{RoomName: "room", SubjectId: "u"}, -time.Minute)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	issuer := NewJWTIssuer("secret", "studysync-be", "studysync-meet")
	other := NewJWTIssuer("secret", "studysync-be", "other-aud")

	token, _, err := issuer.Sign(RoomClaims{RoomName: "room", SubjectId: "u"}, time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}
