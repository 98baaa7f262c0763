package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modeon/internal/core/model"
)

func TestStartSessionSendsKeywordAndToken(t *testing.T) {
	var got struct {
		Keyword         string                    `json:"keyword"`
		SessionSettings *model.BreakSettingsPatch `json:"sessionSettings"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/session/start", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(model.TrackerStatus{IsTracking: true, FocusKeyword: "rust"})
	}))
	defer srv.Close()

	work := 50
	c := NewHTTPClient(srv.URL+"/", "secret")
	status, err := c.StartSession(context.Background(), "Rust", &model.BreakSettingsPatch{WorkDurationMinutes: &work})
	require.NoError(t, err)

	assert.True(t, status.IsTracking)
	assert.Equal(t, "rust", status.FocusKeyword)
	assert.Equal(t, "Rust", got.Keyword)
	require.NotNil(t, got.SessionSettings)
	assert.Equal(t, 50, *got.SessionSettings.WorkDurationMinutes)
}

func TestErrorResponseBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"start session: keyword is empty: invalid input"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "").StartSession(context.Background(), "", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "keyword is empty")
}

func TestHistoryAddsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/history", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"sessions":[{"id":"a","focusKeyword":"go","focusTimeSeconds":90}]}`))
	}))
	defer srv.Close()

	sessions, err := NewHTTPClient(srv.URL, "").History(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "go", sessions[0].Keyword)
	assert.InDelta(t, 90, sessions[0].FocusSeconds, 1e-9)
}

func TestReportTabDecodesActivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tab model.Tab
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&tab))
		assert.Equal(t, "https://youtube.com", tab.URL)
		_, _ = w.Write([]byte(`{"activity":"distraction"}`))
	}))
	defer srv.Close()

	activity, err := NewHTTPClient(srv.URL, "").ReportTab(context.Background(), model.Tab{URL: "https://youtube.com"})
	require.NoError(t, err)
	assert.Equal(t, model.Distraction, activity)
}

func TestWebSocketURL(t *testing.T) {
	wsURL, err := NewHTTPClient("http://127.0.0.1:7345", "").WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:7345/ws", wsURL)

	wsURL, err = NewHTTPClient("https://focus.example.com/base/", "").WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://focus.example.com/base/ws", wsURL)
}

func TestWatchDeliversMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]any{"type": "snapshot", "payload": map[string]any{"status": map[string]any{"isTracking": true}}})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL, err := NewHTTPClient(srv.URL, "secret").WebSocketURL()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- NewWSClient(wsURL, "secret", nil).Watch(ctx, func(msg Message) {
			select {
			case received <- msg:
			default:
			}
			cancel()
		})
	}()

	select {
	case msg := <-received:
		assert.Equal(t, "snapshot", msg.Type)
		assert.Contains(t, string(msg.Payload), `"isTracking":true`)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
	require.NoError(t, <-done)
}
