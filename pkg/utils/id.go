package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateStreamID generates a unique stream ID.
func GenerateStreamID() string {
	return GenerateID("stream")
}

// GenerateInterventionID generates a unique intervention ID.
func GenerateInterventionID() string {
	return GenerateID("iv")
}

// GenerateTakeoverID generates a unique takeover ID.
func GenerateTakeoverID() string {
	return GenerateID("tk")
}

// GenerateModeratorID generates a unique moderator binding ID.
func GenerateModeratorID() string {
	return GenerateID("mod")
}

// GenerateMessageID generates a unique chat message ID.
func GenerateMessageID() string {
	return GenerateID("msg")
}

// GenerateUserID generates a unique user ID.
func GenerateUserID() string {
	return GenerateID("user")
}

// GenerateID generates a prefixed UUID.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

// GenerateStreamKey generates the secret key a broadcaster presents on
// publish. Not guessable from the stream ID.
func GenerateStreamKey() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// GenerateRequestID generates a unique request ID for log correlation.
func GenerateRequestID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
