package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyxstudio/pathway/config"
)

func setSecret(t *testing.T, secret string) {
	t.Helper()
	c, err := config.NewAtPath("")
	require.NoError(t, err)
	c.Token = secret
	config.Set(c)
}

func TestIssueAndVerify(t *testing.T) {
	setSecret(t, "first-secret")

	token, err := Issue("user-1", time.Minute)
	require.NoError(t, err)

	user, err := Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user)
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	setSecret(t, "first-secret")

	expired, err := Issue("user-1", -time.Minute)
	require.NoError(t, err)
	_, err = Verify(expired)
	assert.Error(t, err)

	valid, err := Issue("user-1", time.Minute)
	require.NoError(t, err)
	setSecret(t, "second-secret")
	_, err = Verify(valid)
	assert.Error(t, err)

	_, err = Verify("not.a.token")
	assert.Error(t, err)
}

func TestIssueRequiresUser(t *testing.T) {
	setSecret(t, "first-secret")
	_, err := Issue("", time.Minute)
	assert.Error(t, err)
}
