package auth

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "12345:TEST_TOKEN"

func signedInitData(t *testing.T, values url.Values, botToken string) string {
	t.Helper()
	values.Set("hash", SignInitData(values, botToken))
	return values.Encode()
}

func validInitValues() url.Values {
	return url.Values{
		"user":      {`{"id":42,"first_name":"Dana","username":"dana_d"}`},
		"auth_date": {fmt.Sprintf("%d", time.Now().Unix())},
		"query_id":  {"AAE42"},
	}
}

func TestVerifyInitData_Valid(t *testing.T) {
	initData := signedInitData(t, validInitValues(), testBotToken)

	user, err := VerifyInitData(initData, testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Dana", user.FirstName)
	assert.Equal(t, "dana_d", user.Username)
}

func TestVerifyInitData_Empty(t *testing.T) {
	_, err := VerifyInitData("", testBotToken)
	assert.ErrorIs(t, err, ErrInitDataRequired)

	_, err = VerifyInitData("   ", testBotToken)
	assert.ErrorIs(t, err, ErrInitDataRequired)
}

func TestVerifyInitData_MissingHash(t *testing.T) {
	_, err := VerifyInitData(validInitValues().Encode(), testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyInitData_TamperedPayload(t *testing.T) {
	values := validInitValues()
	initData := signedInitData(t, values, testBotToken)

	// Re-parse and swap the user id without re-signing.
	parsed, err := url.ParseQuery(initData)
	require.NoError(t, err)
	parsed.Set("user", `{"id":999,"first_name":"Mallory"}`)

	_, err = VerifyInitData(parsed.Encode(), testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyInitData_WrongBotToken(t *testing.T) {
	initData := signedInitData(t, validInitValues(), testBotToken)
	_, err := VerifyInitData(initData, "67890:OTHER_TOKEN")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestVerifyInitData_Expired(t *testing.T) {
	values := validInitValues()
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Add(-25*time.Hour).Unix()))
	initData := signedInitData(t, values, testBotToken)

	_, err := VerifyInitData(initData, testBotToken)
	assert.ErrorIs(t, err, ErrInitDataExpired)
}

func TestVerifyInitData_MissingUser(t *testing.T) {
	values := url.Values{
		"auth_date": {fmt.Sprintf("%d", time.Now().Unix())},
	}
	initData := signedInitData(t, values, testBotToken)

	_, err := VerifyInitData(initData, testBotToken)
	assert.ErrorIs(t, err, ErrInvalidInitData)
}
