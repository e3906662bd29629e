package answer

import (
	"context"
	_ "embed"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

//go:embed prompt/answer_system.md
var answerSystemPrompt string

const defaultTimeout = 30 * time.Second

// Canned responses for paths where the oracle cannot or must not be trusted
const (
	degradedMessage  = "I'm temporarily unable to generate an answer. Please try again in a moment."
	noContentMessage = "I don't have that information in my knowledge base. Please check the official Inland Fisheries Service Tasmania website at https://ifs.tas.gov.au/"
)

// Service synthesizes grounded answers from assembled prompts. Every path
// returns a GroundedAnswer; oracle failures degrade, they never propagate.
type Service struct {
	llmClient gollem.LLMClient
	timeout   time.Duration
}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithTimeout bounds each oracle call
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// New creates a synthesis service over the given oracle
func New(llmClient gollem.LLMClient, opts ...Option) (*Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	s := &Service{
		llmClient: llmClient,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Synthesize invokes the oracle with the assembled prompt and wraps the
// result as a GroundedAnswer with the prompt's citations attached.
func (s *Service) Synthesize(ctx context.Context, query string, prompt *Prompt) *model.GroundedAnswer {
	ga := &model.GroundedAnswer{
		ID:        model.NewAnswerID(),
		Query:     query,
		Citations: prompt.Citations,
		NoContent: prompt.NoMaterial,
		CreatedAt: time.Now().UTC(),
	}

	text, err := s.generate(ctx, answerSystemPrompt, prompt.Text)
	if err != nil {
		logging.From(ctx).Error("synthesis oracle call failed, returning degraded answer",
			"error", err.Error())
		ga.Degraded = true
		if prompt.NoMaterial {
			ga.Answer = noContentMessage
		} else {
			ga.Answer = degradedMessage
		}
		return ga
	}

	ga.Answer = appendSuggestions(text, query)
	return ga
}

// GeneralChat handles casual conversation outside the corpus scope. Short
// greetings get fixed replies without an oracle round trip.
func (s *Service) GeneralChat(ctx context.Context, query string) *model.GroundedAnswer {
	ga := &model.GroundedAnswer{
		ID:        model.NewAnswerID(),
		Query:     query,
		CreatedAt: time.Now().UTC(),
	}

	if reply, ok := quickReply(query); ok {
		ga.Answer = reply
		return ga
	}

	text, err := s.generate(ctx, answerSystemPrompt, generalChatPrompt(query))
	if err != nil {
		logging.From(ctx).Error("general chat oracle call failed, returning degraded answer",
			"error", err.Error())
		ga.Degraded = true
		ga.Answer = degradedMessage
		return ga
	}

	ga.Answer = text
	return ga
}

func (s *Service) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	session, err := s.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create synthesis session")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := session.GenerateContent(callCtx, gollem.Text(userPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "synthesis oracle call failed")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("synthesis oracle returned no text")
	}

	return resp.Texts[0], nil
}

func generalChatPrompt(query string) string {
	return "The user said: " + query + "\n\n" +
		"This is casual conversation, not a fishing information request. " +
		"Reply briefly and politely, and mention that you can help with Tasmania " +
		"fishing regulations, species, locations, licenses and weather conditions."
}
