package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadDays(t *testing.T) {
	cases := []struct {
		name    string
		reply   string
		want    int
		wantErr bool
	}{
		{name: "bare number", reply: "5", want: 5},
		{name: "sentence", reply: "I recommend 5 days", want: 5},
		{name: "first number wins", reply: "Start 3 to 4 days early", want: 3},
		{name: "clamped high", reply: "30", want: MaxLeadDays},
		{name: "clamped low", reply: "0 days", want: MinLeadDays},
		{name: "huge number", reply: "99999999999999999999999", want: MaxLeadDays},
		{name: "no digits", reply: "about a week", wantErr: true},
		{name: "empty", reply: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLeadDays(tc.reply)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrNoRecommendation)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestBuildLeadTimePromptIncludesAssignmentFacts(t *testing.T) {
	points := 25.5
	prompt := BuildLeadTimePrompt(LeadTimeInput{Title: "Lab Report", CourseName: "Physics", Points: &points})
	require.Contains(t, prompt, "Assignment Title: Lab Report")
	require.Contains(t, prompt, "Course: Physics")
	require.Contains(t, prompt, "Points: 25.5")

	prompt = BuildLeadTimePrompt(LeadTimeInput{Title: "Quiz", CourseName: "History"})
	require.Contains(t, prompt, "Points: N/A")
}

func TestOpenAIAdvisorParsesReply(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test","choices":[{"index":0,"message":{"role":"assistant","content":"I recommend 5 days"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	advisor, err := NewOpenAIAdvisor(OpenAIConfig{
		Provider: ProviderOpenAI,
		APIKey:   "secret",
		Model:    "test-model",
		BaseURL:  server.URL,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	days, err := advisor.RecommendLeadTime(context.Background(), LeadTimeInput{Title: "Essay", CourseName: "English"})
	require.NoError(t, err)
	require.Equal(t, 5, days)
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "test-model", gotBody["model"])
}

func TestOpenAIAdvisorSurfacesFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		advisor, err := NewOpenAIAdvisor(OpenAIConfig{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = advisor.RecommendLeadTime(context.Background(), LeadTimeInput{Title: "Essay"})
		require.Error(t, err)
	})

	t.Run("no number", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"start early"}}]}`))
		}))
		defer server.Close()

		advisor, err := NewOpenAIAdvisor(OpenAIConfig{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = advisor.RecommendLeadTime(context.Background(), LeadTimeInput{Title: "Essay"})
		require.ErrorIs(t, err, ErrNoRecommendation)
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
		}))
		defer server.Close()

		advisor, err := NewOpenAIAdvisor(OpenAIConfig{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		_, err = advisor.RecommendLeadTime(context.Background(), LeadTimeInput{Title: "Essay"})
		require.Error(t, err)
	})
}

func TestNewOpenAIAdvisorValidatesConfig(t *testing.T) {
	_, err := NewOpenAIAdvisor(OpenAIConfig{})
	require.Error(t, err)

	_, err = NewOpenAIAdvisor(OpenAIConfig{APIKey: "k", Provider: "anthropic"})
	require.Error(t, err)

	advisor, err := NewOpenAIAdvisor(OpenAIConfig{APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, ProviderGemini, advisor.cfg.Provider)
	require.Equal(t, geminiModel, advisor.cfg.Model)
	require.Equal(t, geminiBaseURL, advisor.cfg.BaseURL)
}
