package vault

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"time"

	"github.com/ordermaster/identity/internal/common"
)

// AutoLoginToken is the persisted bearer capability for automatic sign-in.
// The token bytes are the secret; the surrounding payload is plain JSON.
type AutoLoginToken struct {
	UserID  int       `json:"userId"`
	SavedAt time.Time `json:"savedAt"`
	Token   string    `json:"token"`
}

// SaveAutoLoginToken writes a fresh token for the given user. Any previous
// token is replaced.
func (v *Vault) SaveAutoLoginToken(userID int) error {
	token := AutoLoginToken{
		UserID:  userID,
		SavedAt: v.now(),
		Token:   base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(32)),
	}

	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(v.path(autoLoginFile), data, 0o600)
}

// LoadAutoLoginToken returns the stored token if one exists and is younger
// than the configured TTL. A token at or past the TTL is deleted on read and
// reported absent, so stale files heal themselves. The caller still has to
// resolve the user ID against the credential store.
func (v *Vault) LoadAutoLoginToken() *AutoLoginToken {
	data, err := os.ReadFile(v.path(autoLoginFile))
	if err != nil {
		return nil
	}

	var token AutoLoginToken
	if err := json.Unmarshal(data, &token); err != nil {
		v.log.Warn(context.Background(), "auto-login token is malformed, removing")
		_ = os.Remove(v.path(autoLoginFile))
		return nil
	}

	if v.now().Sub(token.SavedAt) >= v.tokenTTL {
		v.log.Info(context.Background(), "auto-login token expired, removing", "userId", token.UserID)
		_ = os.Remove(v.path(autoLoginFile))
		return nil
	}

	return &token
}
