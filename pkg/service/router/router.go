package router

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/anglerlab/finbot/pkg/domain/interfaces"
	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

//go:embed prompt/route_system.md
var routeSystemPrompt string

const defaultTimeout = 15 * time.Second

// Router decides, one query at a time, whether the answer needs retrieval, a
// tool, both, or neither. The decision is made by the generation oracle, so
// its output is treated like untrusted network input: parsed defensively,
// validated against the tool registry, and repaired to the retrieval-only
// default on any violation. Route never returns an error.
type Router struct {
	llmClient gollem.LLMClient
	registry  interfaces.ToolRegistry
	timeout   time.Duration
}

// Option is a functional option for Router configuration
type Option func(*Router)

// WithTimeout bounds each oracle call
func WithTimeout(d time.Duration) Option {
	return func(r *Router) {
		r.timeout = d
	}
}

// New creates a Router over the given oracle and tool registry
func New(llmClient gollem.LLMClient, registry interfaces.ToolRegistry, opts ...Option) (*Router, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	if registry == nil {
		return nil, goerr.New("tool registry is required")
	}

	r := &Router{
		llmClient: llmClient,
		registry:  registry,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Route classifies the query. There is no state across queries.
func (r *Router) Route(ctx context.Context, query string) *model.RouteDecision {
	logger := logging.From(ctx)

	session, err := r.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(decisionSchema()),
		gollem.WithSessionSystemPrompt(routeSystemPrompt),
	)
	if err != nil {
		logger.Warn("failed to create routing session, falling back to retrieval", "error", err.Error())
		return model.RetrievalOnly("repaired: routing session unavailable")
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := session.GenerateContent(callCtx, gollem.Text(buildUserPrompt(query, r.registry.Specs())))
	if err != nil {
		logger.Warn("routing oracle call failed, falling back to retrieval", "error", err.Error())
		return model.RetrievalOnly("repaired: routing oracle call failed")
	}
	if len(resp.Texts) == 0 {
		return model.RetrievalOnly("repaired: routing oracle returned no text")
	}

	decision, err := r.validate(resp.Texts[0])
	if err != nil {
		logger.Warn("malformed route decision repaired to retrieval-only",
			"error", err.Error(), "raw", resp.Texts[0])
		return model.RetrievalOnly(fmt.Sprintf("repaired: %s", err.Error()))
	}

	logger.Debug("route decision",
		"kind", string(decision.Kind()),
		"tool", decision.ToolName.String(),
		"reasoning", decision.Reasoning,
	)
	return decision
}

// validate parses the oracle's free text into a RouteDecision. A well-formed
// decision passes through unchanged; any schema violation is an error and the
// caller repairs to the safe default.
func (r *Router) validate(raw string) (*model.RouteDecision, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	needsRetrieval, err := requireBool(obj, "needs_retrieval")
	if err != nil {
		return nil, err
	}
	needsTool, err := requireBool(obj, "needs_tool")
	if err != nil {
		return nil, err
	}

	decision := &model.RouteDecision{
		NeedsRetrieval: needsRetrieval,
		NeedsTool:      needsTool,
		ToolParams:     map[string]any{},
	}
	if reasoning, ok := obj["reasoning"].(string); ok {
		decision.Reasoning = reasoning
	}

	if !needsTool {
		return decision, nil
	}

	name, ok := obj["tool_name"].(string)
	if !ok || name == "" {
		return nil, goerr.New("needs_tool is set but tool_name is missing")
	}
	toolName := types.ToolName(name)

	tool, ok := r.registry.Lookup(toolName)
	if !ok {
		return nil, goerr.New("tool is not registered", goerr.V("tool", name))
	}
	decision.ToolName = toolName

	if params, ok := obj["tool_params"].(map[string]any); ok {
		decision.ToolParams = params
	}

	if err := checkRequiredParams(tool.Spec(), decision.ToolParams); err != nil {
		return nil, err
	}

	return decision, nil
}

// checkRequiredParams verifies every required parameter is present with a
// coercible type. Values stay untouched; the tool coerces again on invoke.
func checkRequiredParams(spec gollem.ToolSpec, params map[string]any) error {
	for name, param := range spec.Parameters {
		if !param.Required {
			continue
		}
		value, ok := params[name]
		if !ok || value == nil {
			return goerr.New("missing required tool parameter",
				goerr.V("tool", spec.Name), goerr.V("param", name))
		}
		if !coercible(param.Type, value) {
			return goerr.New("tool parameter has wrong type",
				goerr.V("tool", spec.Name), goerr.V("param", name), goerr.V("value", value))
		}
	}
	return nil
}

func coercible(paramType gollem.ParameterType, value any) bool {
	switch paramType {
	case gollem.TypeString:
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	case gollem.TypeNumber, gollem.TypeInteger:
		switch v := value.(type) {
		case float64, float32, int, int64, json.Number:
			return true
		case string:
			var f float64
			_, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &f)
			return err == nil
		default:
			return false
		}
	case gollem.TypeBoolean:
		_, ok := value.(bool)
		return ok
	default:
		return true
	}
}

// extractJSONObject pulls the first JSON object out of the oracle's text,
// tolerating markdown code fences around it.
func extractJSONObject(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, goerr.New("no JSON object in oracle response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, goerr.Wrap(err, "oracle response is not valid JSON")
	}
	return obj, nil
}

func requireBool(obj map[string]any, key string) (bool, error) {
	value, ok := obj[key]
	if !ok {
		return false, goerr.New("decision field is missing", goerr.V("field", key))
	}
	b, ok := value.(bool)
	if !ok {
		return false, goerr.New("decision field must be a boolean",
			goerr.V("field", key), goerr.V("value", value))
	}
	return b, nil
}

var userPromptTmpl = template.Must(template.New("route_user").Parse(`Analyze the user's question and decide which resources are needed.

User question: {{.Query}}

Registered tools:
{{- range .Tools}}
- name: {{.Name}}
  description: {{.Description}}
  parameters:
{{- range $name, $param := .Parameters}}
  - {{$name}} ({{$param.Type}}{{if $param.Required}}, required{{end}}): {{$param.Description}}
{{- end}}
{{- end}}
`))

func buildUserPrompt(query string, specs []gollem.ToolSpec) string {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, map[string]any{
		"Query": query,
		"Tools": specs,
	}); err != nil {
		// Template data is fixed at compile time; fall back to the bare query
		return query
	}
	return buf.String()
}

// decisionSchema is the JSON schema the oracle is asked to follow. It is a
// request, not a guarantee: validate() still checks everything.
func decisionSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "RouteDecision",
		Description: "Routing decision for a user query",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"needs_retrieval": {
				Type:        gollem.TypeBoolean,
				Description: "Whether the answer needs knowledge base retrieval",
				Required:    true,
			},
			"needs_tool": {
				Type:        gollem.TypeBoolean,
				Description: "Whether the answer needs a tool invocation",
				Required:    true,
			},
			"tool_name": {
				Type:        gollem.TypeString,
				Description: "Name of the registered tool to invoke, empty if none",
			},
			"tool_params": {
				Type:        gollem.TypeObject,
				Description: "Parameters for the tool, following its schema",
			},
			"reasoning": {
				Type:        gollem.TypeString,
				Description: "Brief explanation of the decision",
				Required:    true,
			},
		},
	}
}
