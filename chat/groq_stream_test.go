package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SaiNageswarS/chat-boot/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroqBackedAssembler(t *testing.T, handler http.HandlerFunc) *Assembler {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("GROQ_API_URL", server.URL)
	client, err := llm.ProvideGroqClient()
	require.NoError(t, err)

	return newTestAssembler(client)
}

func writeDelta(w http.ResponseWriter, content string) {
	fmt.Fprintf(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", content)
	w.(http.Flusher).Flush()
}

func TestAssembleGroqStreamCutOffReturnsApology(t *testing.T) {
	a := newGroqBackedAssembler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeDelta(w, "Notice ")
		writeDelta(w, "your ")

		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	})

	reporter := &RecordingReporter{}
	result, err := a.Assemble(context.Background(), request("Self-care for stress?"), reporter)
	require.NoError(t, err)
	assert.Equal(t, Result{Text: Apology, State: StateFailed}, result)

	for _, p := range reporter.OfType(EventPartial) {
		assert.True(t, strings.HasPrefix(p.Text, "Notice "))
	}
	assert.Empty(t, reporter.OfType(EventFinal))
	failed := reporter.OfType(EventFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "provider_error", failed[0].Code)
}

func TestAssembleGroqStreamWithoutDoneReturnsApology(t *testing.T) {
	a := newGroqBackedAssembler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeDelta(w, "Notice ")
		writeDelta(w, "your ")
	})

	reporter := &RecordingReporter{}
	result, err := a.Assemble(context.Background(), request("Self-care for stress?"), reporter)
	require.NoError(t, err)
	assert.Equal(t, Result{Text: Apology, State: StateFailed}, result)
	assert.Len(t, reporter.OfType(EventPartial), 2)
	assert.Empty(t, reporter.OfType(EventFinal))
}

func TestAssembleGroqStreamCompletes(t *testing.T) {
	a := newGroqBackedAssembler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeDelta(w, "Notice ")
		writeDelta(w, "your breath.")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	reporter := &RecordingReporter{}
	result, err := a.Assemble(context.Background(), request("Self-care for stress?"), reporter)
	require.NoError(t, err)
	assert.Equal(t, Result{Text: "Notice your breath.", State: StateComplete}, result)
	require.Len(t, reporter.OfType(EventFinal), 1)
}
