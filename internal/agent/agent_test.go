package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solagent/internal/domain"
)

type stubAugmenter struct {
	prefix string
	err    error
}

func (s *stubAugmenter) Augment(_ context.Context, query string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.prefix + query, nil
}

type stubCompleter struct {
	replies  []string
	errs     []error
	call     int
	received []string
	history  [][]domain.Turn
}

func (s *stubCompleter) Complete(_ context.Context, history []domain.Turn, message string) (string, error) {
	s.received = append(s.received, message)
	s.history = append(s.history, append([]domain.Turn(nil), history...))
	i := s.call
	s.call++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return reply, err
}

func TestSendRecordsBothTurns(t *testing.T) {
	comp := &stubCompleter{replies: []string{"hi there"}}
	a := New(&stubAugmenter{prefix: "CTX: "}, comp, false, nil, nil)

	reply, err := a.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	// The augmented prompt goes to the completer; the recorded history
	// keeps the user's raw line so context is never duplicated.
	assert.Equal(t, []string{"CTX: hello"}, comp.received)
	require.Len(t, a.History(), 2)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: "hello"}, a.History()[0])
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Content: "hi there"}, a.History()[1])
}

func TestSendDegradesOnRetrievalError(t *testing.T) {
	comp := &stubCompleter{replies: []string{"ok"}}
	a := New(&stubAugmenter{err: &domain.RetrievalError{Err: errors.New("index down")}}, comp, false, nil, nil)

	_, err := a.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, comp.received, "falls back to the unaugmented query")
}

func TestTurnIsolationAfterCompletionError(t *testing.T) {
	comp := &stubCompleter{
		replies: []string{"", "second answer"},
		errs:    []error{&domain.CompletionError{Err: errors.New("service down")}, nil},
	}
	a := New(&stubAugmenter{}, comp, false, nil, nil)

	_, err := a.Send(context.Background(), "first")
	require.Error(t, err)
	require.Len(t, a.History(), 1, "failed turn keeps the user message only")
	assert.Equal(t, domain.RoleUser, a.History()[0].Role)

	reply, err := a.Send(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "second answer", reply)
	// Turn two saw the partial history from the failed turn.
	assert.Equal(t, []domain.Turn{{Role: domain.RoleUser, Content: "first"}}, comp.history[1])
	assert.Len(t, a.History(), 3)
}

func TestClearHistoryOnInjectedContext(t *testing.T) {
	comp := &stubCompleter{replies: []string{"one", "two"}}
	a := New(&stubAugmenter{prefix: "CTX: "}, comp, true, nil, nil)

	_, err := a.Send(context.Background(), "first")
	require.NoError(t, err)
	_, err = a.Send(context.Background(), "second")
	require.NoError(t, err)

	// With clearing enabled, the second turn starts from empty history
	// because retrieval context was injected.
	assert.Empty(t, comp.history[1])
}

func TestRunQuitAndEOF(t *testing.T) {
	for _, input := range []string{"quit\n", "exit\n", ""} {
		comp := &stubCompleter{}
		var out bytes.Buffer
		a := New(&stubAugmenter{}, comp, false, strings.NewReader(input), &out)
		require.NoError(t, a.Run(context.Background()))
		assert.Zero(t, comp.call)
	}
}

func TestRunProcessesTurnsAndSurvivesErrors(t *testing.T) {
	comp := &stubCompleter{
		replies: []string{"", "fine now"},
		errs:    []error{errors.New("flaky"), nil},
	}
	var out bytes.Buffer
	a := New(&stubAugmenter{}, comp, false, strings.NewReader("one\ntwo\nquit\n"), &out)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 2, comp.call)
	assert.Contains(t, out.String(), "Sorry, there was an error")
	assert.Contains(t, out.String(), "fine now")
}
