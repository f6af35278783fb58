// Package agent runs the conversation loop: one user line at a time is
// augmented with retrieval context, sent to the completion service with the
// running history, and the reply is displayed. The loop's availability is
// prioritised over any single turn: per-turn failures are reported and the
// next turn proceeds.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"solagent/internal/domain"
)

const prompt = ">>> "

const banner = "Chat agent ready (type natural language; 'quit' or 'exit' to leave)"

// Augmenter is the retrieval middleware the loop passes each query through.
type Augmenter interface {
	Augment(ctx context.Context, query string) (string, error)
}

// Agent owns the session history and orchestrates one turn at a time.
type Agent struct {
	augmenter Augmenter
	completer domain.Completer
	history   []domain.Turn

	// clearHistory drops the running history whenever retrieval context is
	// injected, trading conversational continuity for a clean prompt.
	clearHistory bool

	in  io.Reader
	out io.Writer
}

// New creates an Agent reading from in and writing replies to out.
func New(augmenter Augmenter, completer domain.Completer, clearHistory bool, in io.Reader, out io.Writer) *Agent {
	return &Agent{
		augmenter:    augmenter,
		completer:    completer,
		clearHistory: clearHistory,
		in:           in,
		out:          out,
	}
}

// Send processes a single user line: augment, complete, record. The user
// turn is recorded even when completion fails, so the next turn still has
// the partial history.
func (a *Agent) Send(ctx context.Context, line string) (string, error) {
	query, err := a.augmenter.Augment(ctx, line)
	if err != nil {
		log.Printf("warning: %v; continuing without retrieval context", err)
		query = line
	}
	if a.clearHistory && query != line {
		a.history = a.history[:0]
	}

	reply, err := a.completer.Complete(ctx, a.history, query)
	a.history = append(a.history, domain.Turn{Role: domain.RoleUser, Content: line})
	if err != nil {
		return "", err
	}
	a.history = append(a.history, domain.Turn{Role: domain.RoleAssistant, Content: reply})
	return reply, nil
}

// History returns the recorded conversation turns.
func (a *Agent) History() []domain.Turn { return a.history }

// Run reads lines until an exit keyword or end of input.
func (a *Agent) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprintln(a.out, banner)
	for {
		fmt.Fprint(a.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		fmt.Fprintln(a.out, "Processing request...")
		reply, err := a.Send(ctx, line)
		if err != nil {
			fmt.Fprintf(a.out, "Sorry, there was an error processing your input: %v\n", err)
			continue
		}
		fmt.Fprintf(a.out, "\nAssistant:\n%s\n\n", reply)
	}
}
