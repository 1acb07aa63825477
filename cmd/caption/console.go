package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JaimeStill/captioner/workflow"
)

// engine is the subset of workflow.Engine the console drives.
type engine interface {
	Start(ctx context.Context, req workflow.StartRequest) (*workflow.Session, *workflow.Prompt, error)
	Reply(ctx context.Context, id, raw string) (*workflow.Session, *workflow.Prompt, error)
	Get(ctx context.Context, id string) (*workflow.Session, *workflow.Prompt, error)
}

type console struct {
	engine engine
	in     *bufio.Scanner
	out    io.Writer
}

func newConsole(e engine, in io.Reader, out io.Writer) *console {
	return &console{
		engine: e,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// run resumes the session named by req.SessionID when it exists and starts
// it otherwise, then relays prompts and replies until the session closes or
// input ends. A closed input leaves the session checkpointed for later.
func (c *console) run(ctx context.Context, req workflow.StartRequest) error {
	s, prompt, err := c.open(ctx, req)
	if err != nil {
		return err
	}

	for prompt != nil {
		fmt.Fprintf(c.out, "\n%s\n> ", prompt)

		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return fmt.Errorf("read reply: %w", err)
			}
			fmt.Fprintf(c.out, "\nSession %s saved. Run again with -session %s to resume.\n", s.ID, s.ID)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s, prompt, err = c.engine.Reply(ctx, s.ID, c.in.Text())
		if err != nil {
			return err
		}
	}

	c.report(s)
	return nil
}

func (c *console) open(ctx context.Context, req workflow.StartRequest) (*workflow.Session, *workflow.Prompt, error) {
	if req.SessionID != "" {
		s, prompt, err := c.engine.Get(ctx, req.SessionID)
		switch {
		case err == nil && prompt != nil:
			fmt.Fprintf(c.out, "Resuming session %s.\n", s.ID)
			return s, prompt, nil
		case err == nil:
			fmt.Fprintf(c.out, "Session %s is %s; starting a new review.\n", s.ID, s.Status)
		case !errors.Is(err, workflow.ErrSessionNotFound):
			return nil, nil, err
		}
	}

	s, prompt, err := c.engine.Start(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(c.out, "Started session %s.\n", s.ID)
	return s, prompt, nil
}

func (c *console) report(s *workflow.Session) {
	switch s.Decision {
	case workflow.DecisionEnd:
		fmt.Fprintln(c.out, "Session closed without publishing.")
	default:
		fmt.Fprintf(c.out, "Published: %s\n", s.SelectedCaption)
	}
}
