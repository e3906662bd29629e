package answer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/anglerlab/finbot/pkg/service/answer"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"Brown trout have a bag limit of 12 per day."}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

var _ gollem.Session = (*mockLLMSession)(nil)

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, opts...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, errors.New("not used in answer tests")
}

var _ gollem.LLMClient = (*mockLLMClient)(nil)

func failingClient() *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return nil, errors.New("oracle unavailable")
				},
			}, nil
		},
	}
}

func TestSynthesize(t *testing.T) {
	svc, err := answer.New(&mockLLMClient{})
	gt.NoError(t, err).Required()

	prompt := answer.Assemble(&answer.Input{
		Query:     "what is the bag limit for brown trout",
		Retrieval: retrievalFixture(),
	})

	ga := svc.Synthesize(context.Background(), "what is the bag limit for brown trout", prompt)

	gt.Value(t, ga).NotEqual(nil)
	gt.String(t, string(ga.ID)).NotEqual("")
	gt.Bool(t, ga.Degraded).False()
	gt.Bool(t, ga.NoContent).False()
	gt.String(t, ga.Answer).Contains("bag limit of 12")
	gt.Array(t, ga.Citations).Length(1)
	gt.Bool(t, ga.CreatedAt.IsZero()).False()
}

func TestSynthesizeAppendsSuggestions(t *testing.T) {
	svc, err := answer.New(&mockLLMClient{})
	gt.NoError(t, err).Required()

	prompt := answer.Assemble(&answer.Input{
		Query:     "what is the bag limit for brown trout",
		Retrieval: retrievalFixture(),
	})
	ga := svc.Synthesize(context.Background(), "what is the bag limit for brown trout", prompt)

	gt.String(t, ga.Answer).Contains("What else can I help with?")
	gt.String(t, ga.Answer).Contains("size limits")
}

func TestSynthesizeDegradedOnOracleFailure(t *testing.T) {
	svc, err := answer.New(failingClient())
	gt.NoError(t, err).Required()

	prompt := answer.Assemble(&answer.Input{
		Query:     "bag limit for brown trout",
		Retrieval: retrievalFixture(),
	})
	ga := svc.Synthesize(context.Background(), "bag limit for brown trout", prompt)

	gt.Bool(t, ga.Degraded).True()
	gt.String(t, ga.Answer).Contains("temporarily unable")
	// Citations still reflect what was assembled
	gt.Array(t, ga.Citations).Length(1)
}

func TestSynthesizeNoContentDegraded(t *testing.T) {
	svc, err := answer.New(failingClient())
	gt.NoError(t, err).Required()

	prompt := answer.Assemble(&answer.Input{Query: "unknowable"})
	ga := svc.Synthesize(context.Background(), "unknowable", prompt)

	gt.Bool(t, ga.Degraded).True()
	gt.Bool(t, ga.NoContent).True()
	gt.String(t, ga.Answer).Contains("don't have that information")
	gt.String(t, ga.Answer).Contains("ifs.tas.gov.au")
}

func TestGeneralChatQuickReply(t *testing.T) {
	// quickReply short-circuits; the failing oracle must never be reached
	svc, err := answer.New(failingClient())
	gt.NoError(t, err).Required()

	cases := []struct {
		query    string
		contains string
	}{
		{"hello", "Tasmania fishing"},
		{"thanks!", "welcome"},
		{"bye", "Goodbye"},
		{"help", "regulations"},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			ga := svc.GeneralChat(context.Background(), tc.query)
			gt.Bool(t, ga.Degraded).False()
			gt.String(t, ga.Answer).Contains(tc.contains)
			gt.Array(t, ga.Citations).Length(0)
		})
	}
}

func TestGeneralChatViaOracle(t *testing.T) {
	client := &mockLLMClient{
		newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{"I mostly answer fishing questions, but sure!"}}, nil
				},
			}, nil
		},
	}
	svc, err := answer.New(client)
	gt.NoError(t, err).Required()

	ga := svc.GeneralChat(context.Background(), "tell me something interesting about boats and long sentences")
	gt.Bool(t, ga.Degraded).False()
	gt.String(t, ga.Answer).Contains("fishing questions")
}

func TestGeneralChatDegraded(t *testing.T) {
	svc, err := answer.New(failingClient())
	gt.NoError(t, err).Required()

	ga := svc.GeneralChat(context.Background(), "tell me a very long story about the sea and its moods")
	gt.Bool(t, ga.Degraded).True()
	gt.String(t, ga.Answer).Contains("temporarily unable")
}
