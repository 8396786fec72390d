package collector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ErrLoginDeclined is returned when the operator says they did not log in.
var ErrLoginDeclined = errors.New("login declined by operator")

// ErrNotAuthenticated is returned when the session cannot be confirmed and
// the unknown-auth policy fails closed.
var ErrNotAuthenticated = errors.New("session not authenticated")

// AuthState is the outcome of probing a page for a signed-in session.
type AuthState int

const (
	AuthUnknown AuthState = iota
	Authenticated
	NotAuthenticated
)

func (a AuthState) String() string {
	switch a {
	case Authenticated:
		return "authenticated"
	case NotAuthenticated:
		return "not_authenticated"
	default:
		return "unknown"
	}
}

// ProbeAuth inspects the page for signs of a signed-in session. The checks
// run from most to least conclusive; AuthUnknown means none of them fired.
func ProbeAuth(ctx context.Context, doc Document) AuthState {
	if loc, err := doc.Location(ctx); err == nil && isLoginURL(loc) {
		return NotAuthenticated
	}
	title, _ := doc.Title(ctx)
	if isLoginTitle(title) {
		return NotAuthenticated
	}

	if els, err := doc.Query(ctx, loginButtons); err == nil {
		for _, el := range els {
			if el.Visible && containsAny(el.Text, loginLabels) {
				return NotAuthenticated
			}
		}
	}
	for _, sel := range loggedInSelectors {
		if els, err := doc.Query(ctx, sel); err == nil {
			for _, el := range els {
				if el.Visible {
					return Authenticated
				}
			}
		}
	}
	for _, sel := range contentIndicators {
		if els, err := doc.Query(ctx, sel); err == nil && len(els) > 0 {
			return Authenticated
		}
	}

	body, err := doc.Text(ctx)
	if err != nil {
		return AuthUnknown
	}
	body = strings.ToLower(body)
	if containsAny(body, loginRequiredPhrases) {
		return NotAuthenticated
	}
	if utf8.RuneCountInString(body) > 500 {
		return Authenticated
	}
	return AuthUnknown
}

func isLoginURL(u string) bool {
	u = strings.ToLower(u)
	return strings.Contains(u, "login") || strings.Contains(u, "signin")
}

func isLoginTitle(t string) bool {
	t = strings.ToLower(t)
	return strings.Contains(t, "login") || strings.Contains(t, "登录")
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// PromptConfirmer reads y/n answers line by line. A single goroutine owns
// the reader for the confirmer's lifetime; Confirm returns as soon as ctx is
// done even while that read is blocked.
type PromptConfirmer struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan string
	err   error // set before lines is closed
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: in, out: out}
}

func (p *PromptConfirmer) start() {
	p.lines = make(chan string)
	go func() {
		sc := bufio.NewScanner(p.in)
		for sc.Scan() {
			p.lines <- sc.Text()
		}
		p.err = sc.Err()
		close(p.lines)
	}()
}

func (p *PromptConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	p.once.Do(p.start)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(p.out, "%s (y/n): ", question)
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return false, ctx.Err()
		case l, ok := <-p.lines:
			if !ok {
				if p.err != nil {
					return false, p.err
				}
				return false, io.EOF
			}
			line = l
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Session gates a run on a signed-in browser session.
type Session struct {
	Settler   Settler
	Confirmer Confirmer
	Poll      time.Duration
	Timeout   time.Duration
	Unknown   AuthPolicy
	Logger    *slog.Logger
}

// Authenticated maps a probe result to a decision under the unknown-auth policy.
func (s *Session) Authenticated(state AuthState) bool {
	switch state {
	case Authenticated:
		return true
	case NotAuthenticated:
		return false
	default:
		return s.Unknown != FailClosed
	}
}

// Ensure probes doc and, if the session is not signed in, waits for the
// operator to log in by hand.
func (s *Session) Ensure(ctx context.Context, doc Document) error {
	state := ProbeAuth(ctx, doc)
	s.Logger.Info("Login probe", "state", state.String(), "policy", string(s.Unknown))
	if s.Authenticated(state) {
		return nil
	}
	return s.WaitForLogin(ctx, doc)
}

// WaitForLogin rechecks every Poll until the session is signed in or
// Timeout passes, then asks the operator to confirm.
func (s *Session) WaitForLogin(ctx context.Context, doc Document) error {
	s.Logger.Warn("Login required, log in through the browser window", "timeout", s.Timeout)
	poll := s.Poll
	if poll <= 0 {
		poll = 5 * time.Second
	}
	waited := time.Duration(0)
	for waited < s.Timeout {
		if err := s.Settler.Clock.Sleep(ctx, poll); err != nil {
			return err
		}
		waited += poll
		state := ProbeAuth(ctx, doc)
		s.Logger.Info("Waiting for login", "waited", waited, "state", state.String())
		if state == Authenticated {
			return nil
		}
	}

	if s.Confirmer == nil {
		return ErrNotAuthenticated
	}
	ok, err := s.Confirmer.Confirm(ctx, "Have you finished logging in?")
	if err != nil {
		return fmt.Errorf("confirm login: %w", err)
	}
	if !ok {
		return ErrLoginDeclined
	}
	return nil
}
