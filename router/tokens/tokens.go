// Package tokens issues and verifies the bearer tokens accepted by the API.
// Tokens are HS256 JWTs signed with the configured secret whose subject is the
// id of the user making the request.
package tokens

import (
	"time"

	"emperror.dev/errors"
	"github.com/gbrlsnchs/jwt/v3"
	"github.com/google/uuid"

	"github.com/priyxstudio/pathway/config"
)

// Issue signs a token for user that expires after ttl.
func Issue(user string, ttl time.Duration) (string, error) {
	if user == "" {
		return "", errors.New("tokens: a user id is required")
	}
	alg := config.GetJwtAlgorithm()
	if alg == nil {
		return "", errors.New("tokens: no signing secret is configured")
	}
	now := time.Now()
	pl := jwt.Payload{
		Subject:        user,
		IssuedAt:       jwt.NumericDate(now),
		NotBefore:      jwt.NumericDate(now),
		ExpirationTime: jwt.NumericDate(now.Add(ttl)),
		JWTID:          uuid.NewString(),
	}
	b, err := jwt.Sign(pl, alg)
	if err != nil {
		return "", errors.Wrap(err, "tokens: failed to sign token")
	}
	return string(b), nil
}

// Verify checks the signature and validity window of token and returns the
// user id it was issued for.
func Verify(token string) (string, error) {
	alg := config.GetJwtAlgorithm()
	if alg == nil {
		return "", errors.New("tokens: no signing secret is configured")
	}
	var pl jwt.Payload
	now := time.Now()
	validate := jwt.ValidatePayload(&pl, jwt.ExpirationTimeValidator(now), jwt.NotBeforeValidator(now))
	if _, err := jwt.Verify([]byte(token), alg, &pl, validate); err != nil {
		return "", errors.WithStack(err)
	}
	if pl.Subject == "" {
		return "", errors.New("tokens: token has no subject")
	}
	return pl.Subject, nil
}
