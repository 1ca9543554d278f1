package chatrunner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/chatter/pkg/chatapi"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	chats []string
}

func (b *fakeBackend) Chat(_ context.Context, message string) (chatapi.ChatResponse, error) {
	b.chats = append(b.chats, message)
	return chatapi.ChatResponse{Response: "echo: " + message}, nil
}

func (b *fakeBackend) ClearHistory(_ context.Context) (any, error) {
	return map[string]any{}, nil
}

func (b *fakeBackend) History(_ context.Context) (chatapi.HistoryResponse, error) {
	return chatapi.HistoryResponse{}, nil
}

func TestBuild_RequiresBackend(t *testing.T) {
	_, err := NewChatBuilder().Build()
	require.Error(t, err)
}

func TestBuild_CollectsErrors(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := NewChatBuilder().WithContext(nil).WithBackend(&fakeBackend{}).Build()
	require.Error(t, err)

	_, err = NewChatBuilder().WithMode("weird").WithBackend(&fakeBackend{}).Build()
	require.Error(t, err)

	_, err = NewChatBuilder().WithIO(nil, io.Discard).WithBackend(&fakeBackend{}).Build()
	require.Error(t, err)
}

func TestBuild_AutoModeResolvesByTerminal(t *testing.T) {
	b := NewChatBuilder().WithBackend(&fakeBackend{}).WithIO(strings.NewReader(""), io.Discard)
	b.isTerminal = func(io.Reader, io.Writer) bool { return true }
	s, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, RunModeChat, s.Mode())

	b.isTerminal = func(io.Reader, io.Writer) bool { return false }
	s, err = b.Build()
	require.NoError(t, err)
	require.Equal(t, RunModePlain, s.Mode())
}

func TestRun_PlainMode(t *testing.T) {
	backend := &fakeBackend{}
	var out bytes.Buffer
	s, err := NewChatBuilder().
		WithBackend(backend).
		WithMode(RunModePlain).
		WithWelcome("welcome").
		WithIO(strings.NewReader("hello\n/quit\n"), &out).
		Build()
	require.NoError(t, err)
	require.NoError(t, s.Run())

	require.Equal(t, []string{"hello"}, backend.chats)
	require.Equal(t, "Bot: welcome\nYou: hello\n...\nBot: echo: hello\n", out.String())
}

func TestRun_ChatModeStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewChatBuilder().
		WithContext(ctx).
		WithBackend(&fakeBackend{}).
		WithMode(RunModeChat).
		WithIO(strings.NewReader(""), io.Discard).
		WithProgramOptions(tea.WithoutRenderer(), tea.WithoutSignalHandler()).
		Build()
	require.NoError(t, err)
	require.Equal(t, RunModeChat, s.Mode())

	done := make(chan error, 1)
	go func() {
		done <- s.Run()
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("chat session did not stop after cancellation")
	}
}
