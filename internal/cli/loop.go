// Package cli implements the interactive query loop: prompt, read one
// line, search, print ranked results, repeat until an empty line or the
// exit sentinel.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"svcsearch/internal/domain"
)

// Searcher is the loop-facing subset of the catalog service.
type Searcher interface {
	Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error)
}

// Loop reads queries line by line and prints ranked matches. It has two
// states, prompting and terminated; termination is final. An error from
// the searcher ends the loop, nothing is retried per turn.
type Loop struct {
	service Searcher
	in      io.Reader
	out     io.Writer
	topK    int
}

// New creates a query loop reading from in and writing to out.
func New(service Searcher, in io.Reader, out io.Writer, topK int) *Loop {
	if topK <= 0 {
		topK = 3
	}
	return &Loop{service: service, in: in, out: out, topK: topK}
}

// Run prompts until the input is exhausted, a blank line or "exit" is
// entered, or a query fails. A terminating line triggers no embedding or
// index call.
func (l *Loop) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(l.in)
	for {
		fmt.Fprint(l.out, "What do you need to get done? (blank or 'exit' to quit)\n> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || input == "exit" {
			return nil
		}
		results, err := l.service.Query(ctx, input, l.topK)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprint(l.out, "No matches.\n\n")
			continue
		}
		for _, r := range results {
			fmt.Fprintf(l.out, "%s (score: %.4f)\n%s\n\n", r.Name, r.Score, r.Description)
		}
	}
}
