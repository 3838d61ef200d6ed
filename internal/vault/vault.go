// Package vault stores "remember me" credentials encrypted at rest, plus
// the auto-login bearer token. The two artifacts live in separate files so
// form pre-population and automatic sign-in can be toggled independently.
//
// The encryption key is derived from a random per-installation secret
// combined with the local hostname and OS user, so a blob copied to another
// machine or account does not decrypt. Every failure to load is reported as
// "nothing saved": the vault fails closed, never open.
package vault

import (
	"context"
	"encoding/base64"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/ordermaster/identity/internal/common"
	"github.com/ordermaster/identity/internal/cryptox"
	"github.com/ordermaster/identity/internal/logging"
)

const (
	credentialsFile   = "credentials.dat"
	autoLoginFile     = "autologin.json"
	machineSecretFile = "vault.key"

	saltSize  = 16
	nonceSize = 12
)

// SavedCredentials is the decrypted remember-me payload: the literal login
// form contents plus the auto-login preference. It exists in clear only in
// memory.
type SavedCredentials struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	AutoLogin bool      `json:"autoLogin"`
	SavedAt   time.Time `json:"savedAt"`
}

// Vault reads and writes the two credential files inside dir.
type Vault struct {
	dir      string
	tokenTTL time.Duration
	log      logging.Logger
	now      func() time.Time
}

// New returns a vault rooted at dir. tokenTTL bounds the age of the
// auto-login token; zero falls back to seven days.
func New(dir string, tokenTTL time.Duration, log logging.Logger) *Vault {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &Vault{
		dir:      dir,
		tokenTTL: tokenTTL,
		log:      log.With("component", "vault"),
		now:      time.Now,
	}
}

// SaveCredentials encrypts c and writes it to the remember-me file,
// stamping SavedAt.
func (v *Vault) SaveCredentials(c *SavedCredentials) error {
	c.SavedAt = v.now()

	salt := common.GenerateRandByteArray(saltSize)
	key, err := v.deriveKey(salt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := cryptox.EncryptJSON(c, key)
	if err != nil {
		return err
	}

	blob := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	encoded := base64.StdEncoding.EncodeToString(blob)
	return os.WriteFile(v.path(credentialsFile), []byte(encoded), 0o600)
}

// LoadCredentials decrypts and returns the remember-me payload. Any failure
// (missing file, corrupt ciphertext, key from another machine or account)
// yields nil; the caller cannot distinguish "never saved" from "unreadable".
func (v *Vault) LoadCredentials() *SavedCredentials {
	encoded, err := os.ReadFile(v.path(credentialsFile))
	if err != nil {
		return nil
	}

	blob, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil || len(blob) <= saltSize+nonceSize {
		v.log.Warn(context.Background(), "saved credentials are malformed, ignoring")
		return nil
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	ciphertext := blob[saltSize+nonceSize:]

	key, err := v.deriveKey(salt)
	if err != nil {
		return nil
	}
	defer common.WipeByteArray(key)

	var c SavedCredentials
	if err := cryptox.DecryptJSON(ciphertext, nonce, key, &c); err != nil {
		v.log.Warn(context.Background(), "saved credentials failed to decrypt, ignoring")
		return nil
	}
	return &c
}

// Clear removes both the remember-me blob and the auto-login token.
func (v *Vault) Clear() {
	for _, name := range []string{credentialsFile, autoLoginFile} {
		if err := os.Remove(v.path(name)); err != nil && !os.IsNotExist(err) {
			v.log.Warn(context.Background(), "removing vault file failed", "file", name, "error", err)
		}
	}
}

// deriveKey builds the AES key from the per-installation secret and the
// local user/machine identity.
func (v *Vault) deriveKey(salt []byte) ([]byte, error) {
	secret, err := v.machineSecret()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)

	material := append(secret, v.scope()...)
	defer common.WipeByteArray(material)

	return cryptox.DeriveKey(material, salt), nil
}

// machineSecret reads the per-installation random secret, creating it on
// first use with owner-only permissions.
func (v *Vault) machineSecret() ([]byte, error) {
	path := v.path(machineSecretFile)

	secret, err := os.ReadFile(path)
	if err == nil && len(secret) == cryptox.KeySize {
		return secret, nil
	}

	secret = common.GenerateRandByteArray(cryptox.KeySize)
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, err
	}
	return secret, nil
}

// scope binds the key to the local machine and OS account.
func (v *Vault) scope() []byte {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return []byte(hostname + "/" + username)
}

func (v *Vault) path(name string) string {
	return filepath.Join(v.dir, name)
}
