/*
Package review turns a sprint and a 1-on-1 meeting into a PerformanceResult
by prompting a chat model and validating its reply.
*/
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/josephgoksu/SprintReview/internal/logger"
	"github.com/josephgoksu/SprintReview/models"
	"github.com/josephgoksu/SprintReview/prompts"
	"go.uber.org/zap"
)

const chainName = "performance_review"

// Input is what a single review is computed from.
type Input struct {
	Sprint  models.Sprint
	Meeting models.Meeting
}

// Generator runs the prompt -> model -> parser graph. The compiled graph is
// read-only, so one Generator serves concurrent requests.
type Generator struct {
	chain     compose.Runnable[Input, models.PerformanceResult]
	modelName string
	logger    *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithModelName labels errors and logs with the backend model id.
func WithModelName(name string) Option {
	return func(g *Generator) { g.modelName = name }
}

// New compiles the review graph around chatModel.
func New(ctx context.Context, chatModel model.BaseChatModel, builder *prompts.Builder, log *zap.Logger, opts ...Option) (*Generator, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if builder == nil {
		builder = prompts.DefaultBuilder()
	}
	if log == nil {
		log = zap.NewNop()
	}

	g := &Generator{logger: log}
	for _, opt := range opts {
		opt(g)
	}

	// 1. Prompt node
	promptFunc := func(ctx context.Context, in Input) ([]*schema.Message, error) {
		text, err := builder.Build(in.Sprint, in.Meeting)
		if err != nil {
			return nil, record(ctx, fmt.Errorf("build prompt: %w", err))
		}
		g.logger.Debug("review prompt rendered",
			zap.String("sprint_id", in.Sprint.ID),
			zap.Int("tasks", len(in.Sprint.Tasks)),
			zap.Int("notes", len(in.Meeting.Notes)),
			zap.Int("prompt_chars", len(text)))
		return []*schema.Message{schema.UserMessage(text)}, nil
	}

	// 2. Model node. Wrapped in a lambda so models without tool support fit.
	modelFunc := func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
		start := time.Now()
		resp, err := chatModel.Generate(ctx, input)
		elapsed := time.Since(start)
		if err != nil {
			return nil, record(ctx, &GenerationError{Model: g.modelName, Err: err})
		}
		if resp == nil {
			return nil, record(ctx, &GenerationError{Model: g.modelName, Err: errors.New("empty response from model")})
		}
		g.logger.Debug("model responded",
			zap.String("model", g.modelName),
			zap.Duration("latency", elapsed),
			zap.Int("response_chars", len(resp.Content)))
		return resp, nil
	}

	// 3. Parser node
	parserFunc := func(ctx context.Context, output *schema.Message) (models.PerformanceResult, error) {
		result, err := ParseResult(output.Content)
		if err != nil {
			g.logger.Warn("model output rejected",
				zap.Error(err),
				zap.String("raw", logger.Truncate(output.Content, 500)))
			return result, record(ctx, err)
		}
		return result, nil
	}

	graph := compose.NewGraph[Input, models.PerformanceResult]()

	_ = graph.AddLambdaNode("prompt", compose.InvokableLambda(promptFunc))
	_ = graph.AddLambdaNode("model", compose.InvokableLambda(modelFunc))
	_ = graph.AddLambdaNode("parser", compose.InvokableLambda(parserFunc))

	_ = graph.AddEdge(compose.START, "prompt")
	_ = graph.AddEdge("prompt", "model")
	_ = graph.AddEdge("model", "parser")
	_ = graph.AddEdge("parser", compose.END)

	compiled, err := graph.Compile(ctx, compose.WithGraphName(chainName))
	if err != nil {
		return nil, fmt.Errorf("compile chain: %w", err)
	}
	g.chain = compiled
	return g, nil
}

// Generate evaluates one sprint. The model is called exactly once; failures
// come back as *GenerationError or *ResponseParseError.
func (g *Generator) Generate(ctx context.Context, sprint models.Sprint, meeting models.Meeting) (models.PerformanceResult, error) {
	failure := &nodeFailure{}
	ctx = context.WithValue(ctx, nodeFailureKey{}, failure)

	start := time.Now()
	result, err := g.chain.Invoke(ctx, Input{Sprint: sprint, Meeting: meeting})
	if err != nil {
		if failure.err != nil {
			return models.PerformanceResult{}, failure.err
		}
		// Failures outside our nodes (cancellation before the model ran, graph errors).
		return models.PerformanceResult{}, &GenerationError{Model: g.modelName, Err: err}
	}

	if result.SprintID != sprint.ID {
		g.logger.Warn("model returned a different sprint id",
			zap.String("want", sprint.ID),
			zap.String("got", result.SprintID))
	}
	g.logger.Info("review generated",
		zap.String("sprint_id", sprint.ID),
		zap.String("employee_id", meeting.EmployeeID),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// nodeFailure carries the typed error of a failing node back to Generate,
// independent of how the graph runner wraps node errors.
type nodeFailure struct {
	err error
}

type nodeFailureKey struct{}

func record(ctx context.Context, err error) error {
	if f, ok := ctx.Value(nodeFailureKey{}).(*nodeFailure); ok && f.err == nil {
		f.err = err
	}
	return err
}
