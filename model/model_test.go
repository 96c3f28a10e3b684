package model

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(respCh <-chan Response, errCh <-chan error) (string, error) {
	var text string
	for resp := range respCh {
		if !resp.Partial {
			text += resp.Text
		}
	}
	return text, <-errCh
}

func TestMockModel_ScriptPrecedenceThenKeyedFallback(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("hi", "hello")
	m.Script("first")

	req := Request{Messages: []Message{{Role: RoleUser, Text: "hi"}}}
	text, err := drain(m.Generate(context.Background(), req))
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	text, err = drain(m.Generate(context.Background(), req))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 2, m.Calls())
}

func TestMockModel_ConcurrentGenerate(t *testing.T) {
	m := NewMockModel("mock")
	for i := 0; i < 16; i++ {
		m.Script(fmt.Sprintf("answer %d", i))
	}

	var wg sync.WaitGroup
	answers := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := Request{Messages: []Message{{Role: RoleUser, Text: "q"}}}
			text, err := drain(m.Generate(context.Background(), req))
			assert.NoError(t, err)
			answers <- text
		}()
	}
	wg.Wait()
	close(answers)

	// Every scripted response is served exactly once.
	seen := make(map[string]bool)
	for a := range answers {
		seen[a] = true
	}
	assert.Len(t, seen, 16)
	assert.Equal(t, 16, m.Calls())
}
