package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bonitx-quiz-service/internal/domain"
)

// FirestoreConfig configures the document store.
type FirestoreConfig struct {
	ProjectID string
	APIKey    string
	Endpoint  string
}

// Firestore creates one document per submission under the collection path.
// Requests carry the visitor's ID token when the context has one.
type Firestore struct {
	client *http.Client
	cfg    FirestoreConfig
}

func NewFirestore(client *http.Client, cfg FirestoreConfig) (*Firestore, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project id not configured")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultFirestoreEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Firestore{client: defaultClient(client), cfg: cfg}, nil
}

type value map[string]any

type document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]value `json:"fields"`
}

func (f *Firestore) Append(ctx context.Context, collectionPath string, record domain.SubmissionRecord) error {
	var bearer string
	if id, ok := domain.IdentityFromContext(ctx); ok {
		bearer = id.Token
	}
	var created document
	if err := postJSON(ctx, f.client, f.documentsURL(collectionPath), bearer, encodeRecord(record), &created); err != nil {
		return fmt.Errorf("firestore create document: %w", err)
	}
	return nil
}

func (f *Firestore) documentsURL(collectionPath string) string {
	segments := strings.Split(strings.Trim(collectionPath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := fmt.Sprintf("%s/v1/projects/%s/databases/(default)/documents/%s",
		f.cfg.Endpoint, url.PathEscape(f.cfg.ProjectID), strings.Join(segments, "/"))
	if f.cfg.APIKey != "" {
		u += "?key=" + url.QueryEscape(f.cfg.APIKey)
	}
	return u
}

func encodeRecord(record domain.SubmissionRecord) document {
	answers := make(map[string]value, len(record.TestAnswers))
	for id, category := range record.TestAnswers {
		answers[strconv.Itoa(id)] = value{"stringValue": category}
	}
	userID := value{"nullValue": nil}
	if record.UserID != nil {
		userID = value{"stringValue": *record.UserID}
	}
	return document{Fields: map[string]value{
		"email":       {"stringValue": record.Email},
		"timestamp":   {"timestampValue": record.Timestamp.UTC().Format(time.RFC3339Nano)},
		"testAnswers": {"mapValue": map[string]any{"fields": answers}},
		"resultMode":  {"stringValue": string(record.ResultMode)},
		"userId":      userID,
	}}
}
