package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampAge(t *testing.T) {
	assert.Equal(t, 18, ClampAge(3))
	assert.Equal(t, 18, ClampAge(18))
	assert.Equal(t, 33, ClampAge(33))
	assert.Equal(t, 60, ClampAge(60))
	assert.Equal(t, 60, ClampAge(99))
}

func TestNewAgeRange_DoesNotReorder(t *testing.T) {
	r := NewAgeRange(50, 20)
	assert.Equal(t, AgeRange{Min: 50, Max: 20}, r)

	r = NewAgeRange(0, 100)
	assert.Equal(t, AgeRange{Min: 18, Max: 60}, r)
	assert.Equal(t, "18-60", r.String())
}

func TestAgeRange_JSONShape(t *testing.T) {
	b, err := json.Marshal(AgeRange{Min: 18, Max: 60})
	require.NoError(t, err)
	assert.JSONEq(t, `{"min":18,"max":60}`, string(b))
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var nilSession *Session
	assert.True(t, nilSession.Expired(now))
	assert.False(t, (&Session{}).Expired(now), "zero expiry never expires")
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(5 * time.Second)}).Expired(now), "inside skew")
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
}

func TestUserOf(t *testing.T) {
	assert.Nil(t, UserOf(nil))
	u := &User{ID: "u-1"}
	assert.Same(t, u, UserOf(&Session{User: u}))
}

func TestDraftProfile(t *testing.T) {
	r := AgeRange{Min: 20, Max: 30}
	d := OnboardingDraft{Gender: "mujer", InterestedIn: "hombres", AgeRange: &r, Name: "Ana", Phone: "5551234"}
	p := d.Profile("https://cdn/photo.jpg")
	assert.Equal(t, Profile{Name: "Ana", Gender: "mujer", InterestedIn: "hombres", AgeRange: &r, Phone: "5551234", PhotoURL: "https://cdn/photo.jpg"}, p)
}

func TestNotePatch_Empty(t *testing.T) {
	assert.True(t, NotePatch{}.Empty())
	title := "x"
	assert.False(t, NotePatch{Title: &title}.Empty())

	b, err := json.Marshal(NotePatch{Title: &title})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"x"}`, string(b))
}
