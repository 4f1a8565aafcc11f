package chatclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsapp/backend/internal/domain/chat"
)

const sampleAnswer = `<answer>
<text>Here are two quick dinners for you.</text>
<items>
<item>
<id>r-1</id>
<title>Garlic Chicken</title>
<caption>Weeknight favorite</caption>
<image>https://img.example/1.jpg</image>
</item>
<item>
<id>r-2</id>
<title>Lemon Salmon</title>
<caption>Bright and fast</caption>
<image>https://img.example/2.jpg</image>
</item>
</items>
</answer>`

type fakeStore struct {
	mu             sync.Mutex
	created        []string
	appended       []appendedMessage
	createErr      error
	conversationID string
}

type appendedMessage struct {
	conversationID string
	role           chat.Role
	content        string
	recipes        []chat.ParsedRecipe
}

func (s *fakeStore) CreateConversation(_ context.Context, firstMessage string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = append(s.created, firstMessage)
	if s.conversationID == "" {
		s.conversationID = "conv-1"
	}
	return s.conversationID, nil
}

func (s *fakeStore) AppendMessage(_ context.Context, conversationID string, role chat.Role, content string, recipes []chat.ParsedRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, appendedMessage{conversationID, role, content, recipes})
	return nil
}

func (s *fakeStore) snapshot() ([]string, []appendedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := append([]string(nil), s.created...)
	appended := append([]appendedMessage(nil), s.appended...)
	return created, appended
}

func newTestClient(t *testing.T, serverURL string, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = serverURL
	cfg.APIKey = "test-key"
	if cfg.TypingDelay == 0 {
		cfg.TypingDelay = time.Millisecond
	}
	client := NewClient(cfg)
	t.Cleanup(client.Close)
	return client
}

func answerServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, streamPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendMessageSuccessfulTurn(t *testing.T) {
	srv := answerServer(t, sampleAnswer)
	store := &fakeStore{}
	client := newTestClient(t, srv.URL, Config{Store: store})

	err := client.SendMessage(context.Background(), "chicken for dinner", "")
	require.NoError(t, err)

	messages := client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, chat.RoleUser, messages[0].Role)
	assert.Equal(t, "chicken for dinner", messages[0].Content)
	assert.Equal(t, chat.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Here are two quick dinners for you.", messages[1].Content)

	cards := client.RecipeCards()
	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].MessageIndex)
	require.Len(t, cards[0].Recipes.Items, 2)
	assert.Equal(t, "r-1", cards[0].Recipes.Items[0].ID)
	assert.Equal(t, "Lemon Salmon", cards[0].Recipes.Items[1].Title)

	assert.Equal(t, chat.StatusIdle, client.Status())
	assert.False(t, client.IsLoading())
	assert.NoError(t, client.Err())
	assert.Equal(t, "conv-1", client.ConversationID())

	created, appended := store.snapshot()
	require.Len(t, created, 1)
	assert.Equal(t, "chicken for dinner", created[0])
	require.Len(t, appended, 1)
	assert.Equal(t, chat.RoleAssistant, appended[0].role)
	assert.Equal(t, "Here are two quick dinners for you.", appended[0].content)
	assert.Len(t, appended[0].recipes, 2)
}

func TestSendMessageEmptyBodyFallback(t *testing.T) {
	srv := answerServer(t, "")
	client := newTestClient(t, srv.URL, Config{})

	require.NoError(t, client.SendMessage(context.Background(), "anything good?", ""))

	messages := client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "I couldn't find any recipes for that. Try asking differently!", messages[1].Content)
	assert.Empty(t, client.RecipeCards())
	assert.Equal(t, chat.StatusIdle, client.Status())
}

func TestSendMessageUnparseableBodyShownVerbatim(t *testing.T) {
	srv := answerServer(t, "I can only help with recipe questions.")
	client := newTestClient(t, srv.URL, Config{})

	require.NoError(t, client.SendMessage(context.Background(), "write me a poem", ""))

	messages := client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "I can only help with recipe questions.", messages[1].Content)
	assert.Empty(t, client.RecipeCards())
}

func TestSendMessageTextWithoutItemsHasNoCard(t *testing.T) {
	srv := answerServer(t, "<answer><text>What are you in the mood for?</text><items></items></answer>")
	client := newTestClient(t, srv.URL, Config{})

	require.NoError(t, client.SendMessage(context.Background(), "hello", ""))

	messages := client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "What are you in the mood for?", messages[1].Content)
	assert.Empty(t, client.RecipeCards())
}

func TestSendMessageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The body must be consumed before net/http starts watching the
		// connection for the client going away. Without this the handler
		// never observes the cancel and Close hangs.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	var (
		mu         sync.Mutex
		errorCalls []error
	)
	client := newTestClient(t, srv.URL, Config{
		Timeout: 50 * time.Millisecond,
		OnError: func(err error) {
			mu.Lock()
			errorCalls = append(errorCalls, err)
			mu.Unlock()
		},
	})

	err := client.SendMessage(context.Background(), "slow question", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	messages := client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Sorry, the request timed out. Please try again.", messages[1].Content)
	assert.Equal(t, chat.StatusError, client.Status())
	assert.ErrorIs(t, client.Err(), ErrTimeout)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errorCalls, 1)
	assert.ErrorIs(t, errorCalls[0], ErrTimeout)
}

func TestSendMessageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Config{})

	err := client.SendMessage(context.Background(), "chicken", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error (500)")

	messages := client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Sorry, I encountered an error. Please try again.", messages[1].Content)
	assert.Equal(t, chat.StatusError, client.Status())
}

func TestCancelRequestIsSilent(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Config{
		OnError: func(err error) {
			t.Errorf("OnError fired for a cancelled request: %v", err)
		},
	})

	done := make(chan error, 1)
	go func() {
		done <- client.SendMessage(context.Background(), "never mind", "")
	}()

	<-started
	client.CancelRequest()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("SendMessage did not return after cancellation")
	}

	// The user message stays, no assistant message is appended.
	messages := client.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, chat.RoleUser, messages[0].Role)
	assert.Equal(t, chat.StatusIdle, client.Status())
	assert.NoError(t, client.Err())
}

func TestSendMessageSupersedesInFlightRequest(t *testing.T) {
	firstStarted := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first := false
		once.Do(func() { first = true })
		if first {
			_, _ = io.Copy(io.Discard, r.Body)
			close(firstStarted)
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte("<answer><text>Second answer.</text><items></items></answer>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Config{})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- client.SendMessage(context.Background(), "first question", "")
	}()
	<-firstStarted

	require.NoError(t, client.SendMessage(context.Background(), "second question", ""))

	select {
	case err := <-firstDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded SendMessage did not return")
	}

	// Only the winning call produces an assistant message.
	messages := client.Messages()
	var assistant []string
	for _, m := range messages {
		if m.Role == chat.RoleAssistant {
			assistant = append(assistant, m.Content)
		}
	}
	require.Len(t, assistant, 1)
	assert.Equal(t, "Second answer.", assistant[0])
	assert.Equal(t, chat.StatusIdle, client.Status())
}

func TestTypingRevealsNonDecreasingPrefixes(t *testing.T) {
	const text = "Short and sweet."
	srv := answerServer(t, "<answer><text>"+text+"</text><items></items></answer>")

	var (
		mu        sync.Mutex
		snapshots []string
	)
	var client *Client
	client = newTestClient(t, srv.URL, Config{
		OnChange: func() {
			messages := client.Messages()
			if len(messages) == 2 && messages[1].Role == chat.RoleAssistant {
				mu.Lock()
				snapshots = append(snapshots, messages[1].Content)
				mu.Unlock()
			}
		},
	})

	require.NoError(t, client.SendMessage(context.Background(), "hi", ""))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, snapshots)
	prev := ""
	for _, s := range snapshots {
		assert.True(t, strings.HasPrefix(s, prev), "snapshot %q does not extend %q", s, prev)
		prev = s
	}
	assert.Equal(t, text, prev)
}

func TestSendMessageIgnoresBlankInput(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0", Config{})

	require.NoError(t, client.SendMessage(context.Background(), "   ", ""))
	assert.Empty(t, client.Messages())
	assert.Equal(t, chat.StatusIdle, client.Status())
}

func TestSendMessageResumesExistingConversation(t *testing.T) {
	srv := answerServer(t, "<answer><text>Welcome back.</text><items></items></answer>")
	store := &fakeStore{conversationID: "conv-42"}
	client := newTestClient(t, srv.URL, Config{Store: store})

	require.NoError(t, client.SendMessage(context.Background(), "more pasta ideas", "conv-42"))

	created, appended := store.snapshot()
	assert.Empty(t, created)
	require.Len(t, appended, 2)
	assert.Equal(t, "conv-42", appended[0].conversationID)
	assert.Equal(t, chat.RoleUser, appended[0].role)
	assert.Equal(t, "more pasta ideas", appended[0].content)
	assert.Equal(t, chat.RoleAssistant, appended[1].role)
	assert.Equal(t, "Welcome back.", appended[1].content)
}

func TestClearChatResetsState(t *testing.T) {
	srv := answerServer(t, sampleAnswer)
	store := &fakeStore{}
	client := newTestClient(t, srv.URL, Config{Store: store})

	require.NoError(t, client.SendMessage(context.Background(), "chicken dinner", ""))
	require.NotEmpty(t, client.Messages())
	require.NotEmpty(t, client.RecipeCards())
	require.NotEmpty(t, client.ConversationID())

	client.ClearChat()

	assert.Empty(t, client.Messages())
	assert.Empty(t, client.RecipeCards())
	assert.Empty(t, client.ConversationID())
	assert.Equal(t, chat.StatusIdle, client.Status())
	assert.NoError(t, client.Err())
}

func TestStoreFailureDoesNotFailTurn(t *testing.T) {
	srv := answerServer(t, "<answer><text>Still works.</text><items></items></answer>")
	store := &fakeStore{createErr: context.DeadlineExceeded}
	client := newTestClient(t, srv.URL, Config{Store: store})

	require.NoError(t, client.SendMessage(context.Background(), "pasta tonight", ""))

	messages := client.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Still works.", messages[1].Content)
	assert.Empty(t, client.ConversationID())
}
