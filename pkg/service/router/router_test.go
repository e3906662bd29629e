package router_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/service/router"
	"github.com/anglerlab/finbot/pkg/service/tools"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"{}"}}, nil
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
	return nil, errors.New("not used in router tests")
}

var _ gollem.LLMClient = (*mockLLMClient)(nil)

func oracleReturning(text string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry, err := tools.NewRegistry(tools.NewLegalSizeTool(tools.DefaultSizeTable()))
	gt.NoError(t, err).Required()
	return registry
}

func newRouter(t *testing.T, client gollem.LLMClient) *router.Router {
	t.Helper()
	r, err := router.New(client, testRegistry(t))
	gt.NoError(t, err).Required()
	return r
}

func TestRouteWellFormedPassesThrough(t *testing.T) {
	raw := `{
		"needs_retrieval": true,
		"needs_tool": true,
		"tool_name": "check_legal_size",
		"tool_params": {"species": "brown trout", "length_cm": 26},
		"reasoning": "size question about a specific catch"
	}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "I caught a 26cm brown trout, can I keep it?")

	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalAndTool)
	gt.Value(t, decision.ToolName).Equal(types.ToolCheckLegalSize)
	gt.Value(t, decision.ToolParams["species"]).Equal(any("brown trout"))
	gt.Value(t, decision.Reasoning).Equal("size question about a specific catch")
}

func TestRouteGeneralChat(t *testing.T) {
	raw := `{"needs_retrieval": false, "needs_tool": false, "reasoning": "greeting"}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "hello")
	gt.Value(t, decision.Kind()).Equal(model.RouteGeneralChat)
}

func TestRouteToleratesCodeFence(t *testing.T) {
	raw := "```json\n{\"needs_retrieval\": true, \"needs_tool\": false, \"reasoning\": \"regulation lookup\"}\n```"
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "bag limit for flathead")
	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
	gt.Value(t, decision.Reasoning).Equal("regulation lookup")
}

func TestRouteRepairsMissingNeedsTool(t *testing.T) {
	// needs_tool absent entirely: absence and false must be distinguishable,
	// and absence is a schema violation.
	raw := `{"needs_retrieval": true, "reasoning": "incomplete"}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "bag limit for flathead")

	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
	gt.Bool(t, decision.NeedsTool).False()
	gt.String(t, decision.Reasoning).Contains("repaired")
}

func TestRouteRepairsNonBooleanFlag(t *testing.T) {
	raw := `{"needs_retrieval": "yes", "needs_tool": false, "reasoning": "bad type"}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "bag limit for flathead")
	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
	gt.String(t, decision.Reasoning).Contains("repaired")
}

func TestRouteRepairsUnknownTool(t *testing.T) {
	raw := `{
		"needs_retrieval": false,
		"needs_tool": true,
		"tool_name": "cast_line",
		"tool_params": {},
		"reasoning": "made-up tool"
	}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "cast a line for me")

	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
	gt.String(t, decision.Reasoning).Contains("repaired")
}

func TestRouteRepairsMissingToolName(t *testing.T) {
	raw := `{"needs_retrieval": false, "needs_tool": true, "reasoning": "no tool named"}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "check this size")
	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
	gt.String(t, decision.Reasoning).Contains("repaired")
}

func TestRouteRepairsMissingRequiredParam(t *testing.T) {
	raw := `{
		"needs_retrieval": false,
		"needs_tool": true,
		"tool_name": "check_legal_size",
		"tool_params": {"species": "brown trout"},
		"reasoning": "length_cm missing"
	}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "can I keep this brown trout?")

	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
	gt.String(t, decision.Reasoning).Contains("repaired")
}

func TestRouteRepairsWrongParamType(t *testing.T) {
	raw := `{
		"needs_retrieval": false,
		"needs_tool": true,
		"tool_name": "check_legal_size",
		"tool_params": {"species": "brown trout", "length_cm": "about yay big"},
		"reasoning": "length not a number"
	}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "can I keep this brown trout?")
	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
}

func TestRouteAcceptsNumericString(t *testing.T) {
	raw := `{
		"needs_retrieval": false,
		"needs_tool": true,
		"tool_name": "check_legal_size",
		"tool_params": {"species": "brown trout", "length_cm": "26"},
		"reasoning": "length as string"
	}`
	r := newRouter(t, oracleReturning(raw))

	decision := r.Route(context.Background(), "can I keep a 26cm brown trout?")
	gt.Value(t, decision.Kind()).Equal(model.RouteToolOnly)
	gt.Value(t, decision.ToolName).Equal(types.ToolCheckLegalSize)
}

func TestRouteRepairsOnOracleError(t *testing.T) {
	client := &mockLLMClient{
		newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return nil, errors.New("oracle unavailable")
				},
			}, nil
		},
	}
	r := newRouter(t, client)

	decision := r.Route(context.Background(), "bag limit for flathead")

	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
	gt.String(t, decision.Reasoning).Contains("repaired")
}

func TestRouteRepairsOnSessionError(t *testing.T) {
	client := &mockLLMClient{
		newSessionFn: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return nil, errors.New("no session")
		},
	}
	r := newRouter(t, client)

	decision := r.Route(context.Background(), "bag limit for flathead")
	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
}

func TestRouteRepairsNonJSON(t *testing.T) {
	r := newRouter(t, oracleReturning("I think you should check the regulations."))

	decision := r.Route(context.Background(), "bag limit for flathead")
	gt.Value(t, decision.Kind()).Equal(model.RouteRetrievalOnly)
}
