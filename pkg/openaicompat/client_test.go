package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_VendorDefaults(t *testing.T) {
	tests := []struct {
		vendor    string
		wantModel string
	}{
		{vendor: "", wantModel: OpenAIDefaultModel},
		{vendor: "qwen", wantModel: QwenDefaultModel},
		{vendor: "alibaba", wantModel: QwenDefaultModel},
		{vendor: "deepseek", wantModel: DeepSeekDefaultModel},
	}

	for _, tt := range tests {
		t.Run(tt.vendor, func(t *testing.T) {
			c, err := New(Config{Vendor: tt.vendor, APIKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, c.Model())
		})
	}

	_, err := New(Config{Vendor: "deepseek"})
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body["model"])
		msgs := body["messages"].([]any)
		assert.Len(t, msgs, 2)
		assert.NotNil(t, body["response_format"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "x", "object": "chat.completion", "model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  {\"summary\":\"ok\"}  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10}
		}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-test"})
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), ChatRequest{System: "json", User: "대화", JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out.Text)
	assert.Equal(t, 10, out.TotalTokens)
}

func TestChat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), ChatRequest{User: "hi"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestAudioFileName(t *testing.T) {
	assert.Equal(t, "call.m4a", audioFileName("https://cdn.example.com/rec/call.m4a?sig=abc"))
	assert.Equal(t, "audio.webm", audioFileName("https://cdn.example.com/rec/"))
	assert.Equal(t, "audio.webm", audioFileName("https://cdn.example.com/blob"))
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/audio/call.webm":
			w.Write([]byte("RIFF....fake-audio"))
		case strings.HasSuffix(r.URL.Path, "/audio/transcriptions"):
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", r.FormValue("model"))
			assert.Equal(t, "ko", r.FormValue("language"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"text": " 엄마, 병원 다녀오셨어요? "}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	tr, err := NewTranscriber("k", srv.URL, srv.Client())
	require.NoError(t, err)

	text, err := tr.Transcribe(context.Background(), srv.URL+"/audio/call.webm")
	require.NoError(t, err)
	assert.Equal(t, "엄마, 병원 다녀오셨어요?", text)

	_, err = tr.Transcribe(context.Background(), srv.URL+"/audio/missing.webm")
	assert.Error(t, err)
}
