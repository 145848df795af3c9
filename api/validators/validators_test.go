package validators

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

func validationCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	var typed *pkgerrors.Error
	require.True(t, errors.As(err, &typed), "expected typed error, got %v", err)
	return typed.Code()
}

func TestSanitizeSearch(t *testing.T) {
	assert.Equal(t, "para cetamol", SanitizeSearch("  para   %cetamol_ ", 100))
	assert.Equal(t, "aspirin", SanitizeSearch("aspirin-extra", 7))
	assert.Equal(t, "", SanitizeSearch(" %%__ ", 100))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x&big=500", nil)

	v, err := ParseQueryInt(req, "limit", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = ParseQueryInt(req, "missing", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = ParseQueryInt(req, "bad", 10, 1, 100)
	assert.Equal(t, pkgerrors.CodeValidation, validationCode(t, err))

	_, err = ParseQueryInt(req, "big", 10, 1, 100)
	assert.Equal(t, pkgerrors.CodeValidation, validationCode(t, err))
}

func TestParseQueryBoolAndUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?active=true&seller=nope", nil)

	active, err := ParseQueryBool(req, "active")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, *active)

	absent, err := ParseQueryBool(req, "inStock")
	require.NoError(t, err)
	assert.Nil(t, absent)

	_, err = ParseQueryUUID(req, "seller")
	assert.Equal(t, pkgerrors.CodeValidation, validationCode(t, err))
}

type sampleBody struct {
	Name   string `json:"name" validate:"required,max=5"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
}

func TestDecodeJSONBody(t *testing.T) {
	var ok sampleBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"abc","rating":4}`))
	require.NoError(t, DecodeJSONBody(req, &ok))
	assert.Equal(t, "abc", ok.Name)

	cases := map[string]string{
		"empty":         ``,
		"unknown field": `{"name":"abc","rating":4,"extra":1}`,
		"failed rules":  `{"name":"abcdefg","rating":9}`,
		"trailing data": `{"name":"abc","rating":4}{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest sampleBody
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			err := DecodeJSONBody(req, &dest)
			assert.Equal(t, pkgerrors.CodeValidation, validationCode(t, err))
		})
	}
}
