package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironbros/aura-api/internal/models"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
	"github.com/ironbros/aura-api/pkg/response"
)

type profileServiceMock struct {
	profile   *models.Profile
	err       error
	lastUser  string
	lastDelta int64
}

func (m *profileServiceMock) Get(ctx context.Context, userID string) (*models.Profile, error) {
	m.lastUser = userID
	return m.profile, m.err
}

func (m *profileServiceMock) AdjustAura(ctx context.Context, userID string, delta int64) (*models.Profile, error) {
	m.lastUser = userID
	m.lastDelta = delta
	return m.profile, m.err
}

func TestProfileHandlerGet(t *testing.T) {
	mock := &profileServiceMock{profile: &models.Profile{UserID: "user-2", Aura: 150}}
	h := NewProfileHandler(mock)

	c, w := authedContext(t, http.MethodGet, "/api/v1/profiles", nil)
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-2", mock.lastUser)
}

func TestProfileHandlerAdjustAura(t *testing.T) {
	mock := &profileServiceMock{profile: &models.Profile{UserID: "user-2", Aura: 125}}
	h := NewProfileHandler(mock)

	body, err := json.Marshal(AdjustAuraRequest{Delta: -25})
	require.NoError(t, err)
	c, w := authedContext(t, http.MethodPut, "/api/v1/profiles/aura", body)
	h.AdjustAura(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-2", mock.lastUser)
	assert.Equal(t, int64(-25), mock.lastDelta)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Data)
}

func TestProfileHandlerAdjustAuraInvalidBody(t *testing.T) {
	mock := &profileServiceMock{}
	h := NewProfileHandler(mock)

	c, w := authedContext(t, http.MethodPut, "/api/v1/profiles/aura", []byte(`{}`))
	h.AdjustAura(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mock.lastDelta)
}

func TestProfileHandlerAdjustAuraMissingProfile(t *testing.T) {
	mock := &profileServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "profile not found for user user-2")}
	h := NewProfileHandler(mock)

	body, err := json.Marshal(AdjustAuraRequest{Delta: 10})
	require.NoError(t, err)
	c, w := authedContext(t, http.MethodPut, "/api/v1/profiles/aura", body)
	h.AdjustAura(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
