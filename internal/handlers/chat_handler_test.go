package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mediascope/internal/models"
)

// mockChatService implements interfaces.ChatService for testing
type mockChatService struct {
	askFunc     func(ctx context.Context, mediaID, question string) (*models.AskResponse, error)
	historyFunc func(ctx context.Context, mediaID string) ([]*models.ChatMessage, error)
}

func (m *mockChatService) Ask(ctx context.Context, mediaID, question string) (*models.AskResponse, error) {
	if m.askFunc != nil {
		return m.askFunc(ctx, mediaID, question)
	}
	return nil, nil
}

func (m *mockChatService) History(ctx context.Context, mediaID string) ([]*models.ChatMessage, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, mediaID)
	}
	return nil, nil
}

func (m *mockChatService) BuildContext(ctx context.Context, mediaID string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func newTestChatHandler(svc *mockChatService) *ChatHandler {
	return NewChatHandler(svc, arbor.NewLogger())
}

func TestAskHandler_Success(t *testing.T) {
	svc := &mockChatService{
		askFunc: func(ctx context.Context, mediaID, question string) (*models.AskResponse, error) {
			return &models.AskResponse{
				MediaID:  mediaID,
				Question: question,
				Answer:   "Two people on a beach.",
			}, nil
		},
	}
	handler := newTestChatHandler(svc)

	body := `{"media_id":"media_1","question":"What is in the video?"}`
	req := httptest.NewRequest("POST", "/api/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "Two people on a beach." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.MediaID != "media_1" {
		t.Errorf("unexpected media_id: %q", resp.MediaID)
	}
}

func TestAskHandler_MissingQuestion(t *testing.T) {
	handler := newTestChatHandler(&mockChatService{})

	body := `{"media_id":"media_1"}`
	req := httptest.NewRequest("POST", "/api/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)

	if rec.Code != 400 {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAskHandler_InvalidBody(t *testing.T) {
	handler := newTestChatHandler(&mockChatService{})

	req := httptest.NewRequest("POST", "/api/ask", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)

	if rec.Code != 400 {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAskHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestChatHandler(&mockChatService{})

	req := httptest.NewRequest("GET", "/api/ask", nil)
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)

	if rec.Code != 405 {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHistoryHandler_ReturnsMessages(t *testing.T) {
	svc := &mockChatService{
		historyFunc: func(ctx context.Context, mediaID string) ([]*models.ChatMessage, error) {
			return []*models.ChatMessage{
				{MediaID: mediaID, Question: "What color?", Answer: "Blue."},
			}, nil
		},
	}
	handler := newTestChatHandler(svc)

	req := httptest.NewRequest("GET", "/api/chat/media_1", nil)
	rec := httptest.NewRecorder()
	handler.HistoryHandler(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		MediaID  string                `json:"media_id"`
		Messages []*models.ChatMessage `json:"messages"`
		Count    int                   `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Messages) != 1 {
		t.Fatalf("expected one message, got %d", resp.Count)
	}
	if resp.Messages[0].Answer != "Blue." {
		t.Errorf("unexpected answer: %q", resp.Messages[0].Answer)
	}
}

func TestHistoryHandler_MissingID(t *testing.T) {
	handler := newTestChatHandler(&mockChatService{})

	req := httptest.NewRequest("GET", "/api/chat/", nil)
	rec := httptest.NewRecorder()
	handler.HistoryHandler(rec, req)

	if rec.Code != 400 {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
