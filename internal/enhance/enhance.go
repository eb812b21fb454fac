// Package enhance rewrites résumé sections and cover letter bodies from a
// short user request.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/resume-studio/internal/llm"
	"github.com/jonathan/resume-studio/internal/prompts"
	"github.com/jonathan/resume-studio/internal/types"
)

// DefaultTimeout bounds a single enhancement call
const DefaultTimeout = 30 * time.Second

// Error reports a failed enhancement. It is never fatal to the session.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Request describes what to enhance
type Request struct {
	Kind types.DocumentKind
	// Prompt is the user's request, e.g. "distributed systems"
	Prompt string
	// Section is the title of the résumé section being rewritten
	Section string
	// Current is the text being replaced
	Current string
	// Company is the addressee of a cover letter
	Company string
}

// Enhancer produces replacement text
type Enhancer interface {
	Enhance(ctx context.Context, req Request) (string, error)
}

// LLMEnhancer generates text with an LLM client
type LLMEnhancer struct {
	client  llm.Client
	timeout time.Duration
}

// NewLLMEnhancer creates an enhancer. A zero timeout uses DefaultTimeout.
func NewLLMEnhancer(client llm.Client, timeout time.Duration) *LLMEnhancer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LLMEnhancer{client: client, timeout: timeout}
}

// Enhance implements Enhancer
func (e *LLMEnhancer) Enhance(ctx context.Context, req Request) (string, error) {
	key, tier := "resume-section", llm.TierLite
	if req.Kind == types.KindCoverLetter {
		key, tier = "cover-letter", llm.TierStandard
	}

	prompt, err := prompts.Render("enhance.json", key, map[string]string{
		"Section": req.Section,
		"Company": companyOrDefault(req.Company),
		"Request": req.Prompt,
		"Current": req.Current,
	})
	if err != nil {
		return "", &Error{Message: "failed to build prompt", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, err := e.client.GenerateContent(ctx, prompt, tier)
	if errors.Is(err, llm.ErrBlocked) {
		return "", &Error{Message: "the assistant declined this request; try rephrasing it", Cause: err}
	}
	if err != nil {
		return "", &Error{Message: "text generation failed", Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Message: "text generation returned no content"}
	}
	log.Printf("[enhance] generated %d chars for %s in %s", len(text), req.Kind, time.Since(start).Round(time.Millisecond))
	return text, nil
}

// StubEnhancer returns canned text built from the request. It is used when no
// LLM API key is configured.
type StubEnhancer struct{}

// Enhance implements Enhancer
func (StubEnhancer) Enhance(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Message: "enhancement cancelled", Cause: err}
	}
	if req.Kind == types.KindCoverLetter {
		return stubCoverLetter(req), nil
	}
	return stubSection(req), nil
}

func stubSection(req Request) string {
	p := req.Prompt
	return "Enhanced content for " + p + ":\n\n" +
		"• Leveraged advanced " + p + " techniques to improve performance by 40%\n" +
		"• Collaborated with cross-functional teams to deliver innovative solutions\n" +
		"• Demonstrated expertise in " + p + " through successful project delivery\n" +
		"• Maintained high standards of quality and attention to detail"
}

func stubCoverLetter(req Request) string {
	company := companyOrDefault(req.Company)
	verb := "managed"
	if fields := strings.Fields(req.Prompt); len(fields) > 0 {
		verb = fields[0]
	}
	return "I am writing to express my interest in the position at " + company +
		". With my extensive experience in " + req.Prompt +
		", I am confident in my ability to contribute effectively to your team.\n\n" +
		"In my previous role, I successfully " + verb +
		" projects that resulted in significant improvements. My skills in " + req.Prompt +
		" align perfectly with the requirements for this position, and I am excited about the opportunity to bring my expertise to your organization.\n\n" +
		"I am particularly drawn to " + company +
		" because of your commitment to innovation and excellence. I am eager to discuss how my background, skills, and enthusiasms can benefit your team."
}

func companyOrDefault(company string) string {
	if strings.TrimSpace(company) == "" {
		return "your company"
	}
	return company
}

var (
	_ Enhancer = (*LLMEnhancer)(nil)
	_ Enhancer = StubEnhancer{}
)
