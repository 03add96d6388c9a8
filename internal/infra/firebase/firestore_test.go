package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bonitx-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirestoreAppendEncodesRecord(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotDoc  map[string]map[string]map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		_, _ = w.Write([]byte(`{"name":"projects/p/databases/(default)/documents/x/1","fields":{}}`))
	}))
	defer server.Close()

	store, err := NewFirestore(server.Client(), FirestoreConfig{ProjectID: "holabonitx", APIKey: "k", Endpoint: server.URL})
	require.NoError(t, err)

	uid := "anon-1"
	record := domain.SubmissionRecord{
		Email:       "a@b.com",
		Timestamp:   time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC),
		TestAnswers: map[int]string{1: "C", 5: "A"},
		ResultMode:  domain.ModeConexion,
		UserID:      &uid,
	}
	ctx := domain.WithIdentity(context.Background(), domain.Identity{UserID: uid, Token: "id-tok"})
	require.NoError(t, store.Append(ctx, domain.CollectionPath("holabonitx"), record))

	assert.Equal(t, "/v1/projects/holabonitx/databases/(default)/documents/artifacts/holabonitx/public/data/test_leads", gotPath)
	assert.Equal(t, "Bearer id-tok", gotAuth)

	fields := gotDoc["fields"]
	assert.Len(t, fields, 5)
	assert.Equal(t, "a@b.com", fields["email"]["stringValue"])
	assert.Equal(t, "2025-03-08T10:00:00Z", fields["timestamp"]["timestampValue"])
	assert.Equal(t, "Modo Conexión", fields["resultMode"]["stringValue"])
	assert.Equal(t, "anon-1", fields["userId"]["stringValue"])
	answers := fields["testAnswers"]["mapValue"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"stringValue": "A"}, answers["5"])
}

func TestFirestoreAppendWritesNullUser(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	store, err := NewFirestore(server.Client(), FirestoreConfig{ProjectID: "p", Endpoint: server.URL})
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), "leads", domain.SubmissionRecord{Email: "a@b.com"}))

	userID := raw["fields"].(map[string]any)["userId"].(map[string]any)
	v, ok := userID["nullValue"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestFirestoreAppendReportsPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Missing or insufficient permissions.","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	store, err := NewFirestore(server.Client(), FirestoreConfig{ProjectID: "p", Endpoint: server.URL})
	require.NoError(t, err)
	err = store.Append(context.Background(), "leads", domain.SubmissionRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")
}

func TestNewFirestoreRequiresProject(t *testing.T) {
	_, err := NewFirestore(nil, FirestoreConfig{})
	assert.Error(t, err)
}
