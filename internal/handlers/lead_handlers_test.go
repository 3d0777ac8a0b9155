package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playabot-backend/internal/models"
	"playabot-backend/internal/services"
	"playabot-backend/internal/store"
)

type stubStore struct {
	createErr error
	created   *store.CreateLeadParams
}

func (s *stubStore) Init(ctx context.Context) error { return nil }

func (s *stubStore) CreateLead(ctx context.Context, params store.CreateLeadParams) (*models.Lead, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &params
	return &models.Lead{ID: uuid.New(), Name: params.Name, Phone: params.Phone}, nil
}

func (s *stubStore) ReplaceKnowledgeChunks(ctx context.Context, chunks []store.KnowledgeChunkParams) error {
	return nil
}

func (s *stubStore) SearchKnowledgeChunks(ctx context.Context, params store.SearchChunksParams) ([]models.KnowledgeSearchResult, error) {
	return nil, nil
}

func postLead(h *LeadHandlers, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/lead", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSubmitLead(rec, req)
	return rec
}

func TestHandleSubmitLead(t *testing.T) {
	t.Run("success returns id", func(t *testing.T) {
		st := &stubStore{}
		h := NewLeadHandlers(services.NewLeadService(st))

		rec := postLead(h, `{"name":"Kim","interest":"테니스"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.LeadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		require.NotNil(t, st.created)
	})

	t.Run("empty name and phone rejected", func(t *testing.T) {
		h := NewLeadHandlers(services.NewLeadService(&stubStore{}))
		rec := postLead(h, `{"name":"","phone":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "이름 또는 연락처가 필요합니다")
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		h := NewLeadHandlers(services.NewLeadService(&stubStore{}))
		rec := postLead(h, "{oops")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure yields generic message", func(t *testing.T) {
		h := NewLeadHandlers(services.NewLeadService(&stubStore{createErr: errors.New("pq: connection reset")}))
		rec := postLead(h, `{"phone":"010-1234-5678"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "저장 중 오류가 발생했습니다")
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}
