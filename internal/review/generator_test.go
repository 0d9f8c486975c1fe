package review

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/josephgoksu/SprintReview/models"
	"github.com/josephgoksu/SprintReview/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stubChatModel implements model.BaseChatModel and records every call.
type stubChatModel struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
}

func (m *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(input) > 0 {
		m.prompts = append(m.prompts, input[len(input)-1].Content)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.response}, nil
}

func (m *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

const wellFormed = `{
	"sprint_id": "SPR-12",
	"performance_summary": "Delivered the committed scope.",
	"high_lighting": ["Fixed the checkout bug", "Good 1:1 engagement"],
	"strengths_areas_for_improvement": "Strong debugging; could estimate better.",
	"can_be_laid_off": "No, performance is solid."
}`

func fixtures() (models.Sprint, models.Meeting) {
	sprint := models.Sprint{ID: "SPR-12", Tasks: []models.Task{{
		ID: "T-1", Title: "Fix bug", Status: "done", Duration: "2h", Points: 2,
	}}}
	meeting := models.Meeting{EmployeeID: "E-7", Date: "2024-05-10", Notes: []models.MeetingNote{{
		Topic: "1:1", Discussion: "good progress",
	}}}
	return sprint, meeting
}

func newGenerator(t *testing.T, m model.BaseChatModel, opts ...Option) *Generator {
	t.Helper()
	g, err := New(context.Background(), m, prompts.DefaultBuilder(), zap.NewNop(), opts...)
	require.NoError(t, err)
	return g
}

func TestGenerate_HappyPath(t *testing.T) {
	stub := &stubChatModel{response: wellFormed}
	g := newGenerator(t, stub)
	sprint, meeting := fixtures()

	result, err := g.Generate(context.Background(), sprint, meeting)
	require.NoError(t, err)

	assert.Equal(t, sprint.ID, result.SprintID)
	assert.Equal(t, "Delivered the committed scope.", result.PerformanceSummary.String())
	assert.True(t, result.HighLighting.IsList())
	assert.Equal(t, []string{"Fixed the checkout bug", "Good 1:1 engagement"}, result.HighLighting.Values())
	assert.False(t, result.CanBeLaidOff.IsList())

	require.Equal(t, 1, stub.calls)
	assert.Contains(t, stub.prompts[0], "- Fix bug: done (2h)")
	assert.Contains(t, stub.prompts[0], "- 1:1: good progress")
	assert.Contains(t, stub.prompts[0], "sprint SPR-12")
}

func TestGenerate_BackendUnavailable(t *testing.T) {
	backendErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	stub := &stubChatModel{err: backendErr}
	g := newGenerator(t, stub, WithModelName("llama3.2"))
	sprint, meeting := fixtures()

	_, err := g.Generate(context.Background(), sprint, meeting)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "llama3.2", genErr.Model)
	assert.ErrorIs(t, err, backendErr)
	assert.Equal(t, 1, stub.calls, "no retry")
}

func TestGenerate_Timeout(t *testing.T) {
	stub := &stubChatModel{err: context.DeadlineExceeded}
	g := newGenerator(t, stub)
	sprint, meeting := fixtures()

	_, err := g.Generate(context.Background(), sprint, meeting)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, stub.calls)
}

func TestGenerate_MalformedOutput(t *testing.T) {
	raw := "I think this employee did great!"
	stub := &stubChatModel{response: raw}
	g := newGenerator(t, stub)
	sprint, meeting := fixtures()

	_, err := g.Generate(context.Background(), sprint, meeting)

	var parseErr *ResponseParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, raw, parseErr.Raw)
	assert.Equal(t, 1, stub.calls)
}

func TestGenerate_MissingField(t *testing.T) {
	stub := &stubChatModel{response: `{
		"sprint_id": "SPR-12",
		"performance_summary": "ok",
		"high_lighting": "ok",
		"strengths_areas_for_improvement": "ok"
	}`}
	g := newGenerator(t, stub)
	sprint, meeting := fixtures()

	_, err := g.Generate(context.Background(), sprint, meeting)

	var parseErr *ResponseParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "can_be_laid_off", parseErr.Field)
}

func TestGenerate_Idempotent(t *testing.T) {
	stub := &stubChatModel{response: wellFormed}
	g := newGenerator(t, stub)
	sprint, meeting := fixtures()

	first, err := g.Generate(context.Background(), sprint, meeting)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), sprint, meeting)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Generate() not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, stub.prompts[0], stub.prompts[1], "prompt must be deterministic")
}

func TestGenerate_ConcurrentCalls(t *testing.T) {
	stub := &stubChatModel{response: wellFormed}
	g := newGenerator(t, stub)
	sprint, meeting := fixtures()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Generate(context.Background(), sprint, meeting)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 8, stub.calls)
}

func TestGenerate_SprintIDMismatchIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	stub := &stubChatModel{response: `{
		"sprint_id": "OTHER",
		"performance_summary": "ok",
		"high_lighting": "ok",
		"strengths_areas_for_improvement": "ok",
		"can_be_laid_off": "ok"
	}`}
	g, err := New(context.Background(), stub, nil, zap.New(core))
	require.NoError(t, err)
	sprint, meeting := fixtures()

	result, err := g.Generate(context.Background(), sprint, meeting)
	require.NoError(t, err, "sprint id is not cross-checked")
	assert.Equal(t, "OTHER", result.SprintID)
	assert.Equal(t, 1, logs.FilterMessage("model returned a different sprint id").Len())
}

func TestGenerate_BadTemplate(t *testing.T) {
	builder, err := prompts.NewBuilder("{{.Missing}}")
	require.NoError(t, err)
	stub := &stubChatModel{response: wellFormed}
	g, err := New(context.Background(), stub, builder, nil)
	require.NoError(t, err)
	sprint, meeting := fixtures()

	_, err = g.Generate(context.Background(), sprint, meeting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build prompt")
	assert.Equal(t, 0, stub.calls)
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}
