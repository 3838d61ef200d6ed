package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermaster/identity/internal/common"
)

type payload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("machine secret")
	salt := common.GenerateRandByteArray(16)

	k1 := DeriveKey(secret, salt)
	k2 := DeriveKey(secret, salt)

	require.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
}

func TestDeriveKey_SaltChangesKey(t *testing.T) {
	secret := []byte("machine secret")
	k1 := DeriveKey(secret, []byte("salt-one........"))
	k2 := DeriveKey(secret, []byte("salt-two........"))
	assert.NotEqual(t, k1, k2)
}

func TestEncryptDecryptJSON_RoundTrip(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	in := payload{Username: "alice", Password: "secret1"}

	ciphertext, nonce, err := EncryptJSON(in, key)
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)
	require.Len(t, nonce, 12)

	var out payload
	require.NoError(t, DecryptJSON(ciphertext, nonce, key, &out))
	assert.Equal(t, in, out)
}

func TestDecryptJSON_WrongKeyFails(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	ciphertext, nonce, err := EncryptJSON(payload{Username: "alice"}, key)
	require.NoError(t, err)

	var out payload
	err = DecryptJSON(ciphertext, nonce, common.GenerateRandByteArray(KeySize), &out)
	assert.Error(t, err)
}

func TestDecryptJSON_TamperedCiphertextFails(t *testing.T) {
	key := common.GenerateRandByteArray(KeySize)
	ciphertext, nonce, err := EncryptJSON(payload{Username: "alice"}, key)
	require.NoError(t, err)

	ciphertext[0] ^= 0xff

	var out payload
	assert.Error(t, DecryptJSON(ciphertext, nonce, key, &out))
}

func TestEncryptJSON_BadKeyLength(t *testing.T) {
	_, _, err := EncryptJSON(payload{}, []byte("short"))
	assert.Error(t, err)
}
