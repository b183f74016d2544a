// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package anthropic is a narrow wrapper over the official Anthropic SDK. It
// exposes the two call shapes the pipeline needs: a single synchronous
// message and the Message Batches API. Pipeline stages depend on the Client
// interface so tests can substitute a mock.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/jsonl"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Batch processing states reported by the API.
const (
	StatusInProgress = "in_progress"
	StatusCanceling  = "canceling"
	StatusEnded      = "ended"
)

// Per-item result types of an ended batch.
const (
	ResultSucceeded = "succeeded"
	ResultErrored   = "errored"
	ResultCanceled  = "canceled"
	ResultExpired   = "expired"
)

// Client is the subset of the Anthropic API used by the pipeline.
type Client interface {
	// Send issues one message request and waits for the reply.
	Send(ctx context.Context, req Request) (*Response, error)

	// SubmitBatch creates a message batch from the given items.
	SubmitBatch(ctx context.Context, items []BatchItem) (*Batch, error)

	// Batch fetches the current state of a batch.
	Batch(ctx context.Context, batchID string) (*Batch, error)

	// Results streams the per-item results of an ended batch.
	Results(ctx context.Context, batchID string) (ResultIterator, error)
}

// ResultIterator walks the results of an ended batch.
type ResultIterator interface {
	Next() bool
	Result() Result
	Err() error
	Close() error
}

// Request is a single-turn prompt: one system block and one user message.
type Request struct {
	Model     string
	MaxTokens int64
	System    string
	User      string

	// CacheSystem marks the system block for ephemeral prompt caching.
	CacheSystem bool
}

// Response is the text reply to a Request.
type Response struct {
	ID         string
	Model      string
	Text       string
	StopReason string
	Usage      Usage
}

// Usage counts tokens consumed by one response.
type Usage struct {
	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64
}

// Add returns the element-wise sum of two usages.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:      u.InputTokens + o.InputTokens,
		OutputTokens:     u.OutputTokens + o.OutputTokens,
		CacheWriteTokens: u.CacheWriteTokens + o.CacheWriteTokens,
		CacheReadTokens:  u.CacheReadTokens + o.CacheReadTokens,
	}
}

// pricing is {input, output} USD per million tokens, keyed by model family.
var pricing = map[string][2]float64{
	"haiku":  {0.80, 4.00},
	"sonnet": {3.00, 15.00},
	"opus":   {15.00, 75.00},
}

// Cost estimates the USD cost of the usage for a model. Unknown models cost 0.
// Batch requests are billed at half price; pass batch=true for those.
func (u Usage) Cost(model string, batch bool) float64 {
	var rate [2]float64
	found := false
	for family, r := range pricing {
		if strings.Contains(model, family) {
			rate, found = r, true
			break
		}
	}
	if !found {
		return 0
	}
	cost := float64(u.InputTokens)/1e6*rate[0] +
		float64(u.OutputTokens)/1e6*rate[1] +
		float64(u.CacheWriteTokens)/1e6*rate[0]*1.25 +
		float64(u.CacheReadTokens)/1e6*rate[0]*0.1
	if batch {
		cost /= 2
	}
	return cost
}

// Log writes the usage and its estimated cost at info level.
func (u Usage) Log(model, stage string, batch bool) {
	zap.L().Info("token usage",
		zap.String("model", model),
		zap.String("stage", stage),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheWriteTokens),
		zap.Int64("cache_read_tokens", u.CacheReadTokens),
		zap.Float64("estimated_cost_usd", u.Cost(model, batch)),
	)
}

// BatchItem is one request inside a batch, addressed by CustomID.
type BatchItem struct {
	CustomID string
	Request  Request
}

// Batch is the server-side state of a message batch.
type Batch struct {
	ID        string
	Status    string
	Counts    Counts
	CreatedAt time.Time
	EndedAt   time.Time
}

// Ended reports whether the batch has finished processing.
func (b *Batch) Ended() bool {
	return b.Status == StatusEnded
}

// Counts tallies batch requests by state.
type Counts struct {
	Processing int64
	Succeeded  int64
	Errored    int64
	Canceled   int64
	Expired    int64
}

// Total is the number of requests in the batch.
func (c Counts) Total() int64 {
	return c.Processing + c.Succeeded + c.Errored + c.Canceled + c.Expired
}

// Result is one item of an ended batch.
type Result struct {
	CustomID string
	Type     string
	Response *Response
}

// Succeeded reports whether the item produced a response.
func (r Result) Succeeded() bool {
	return r.Type == ResultSucceeded && r.Response != nil
}

type sdkClient struct {
	client sdk.Client
}

// New returns a Client backed by the official SDK. Extra request options
// (base URL, retries) are passed through.
func New(apiKey string, opts ...option.RequestOption) Client {
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &sdkClient{client: sdk.NewClient(all...)}
}

func (c *sdkClient) Send(ctx context.Context, req Request) (*Response, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		System:    systemBlocks(req),
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.User))},
	})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: send message")
	}
	return toResponse(msg), nil
}

func (c *sdkClient) SubmitBatch(ctx context.Context, items []BatchItem) (*Batch, error) {
	if len(items) == 0 {
		return nil, eris.New("anthropic: empty batch")
	}
	reqs := make([]sdk.MessageBatchNewParamsRequest, 0, len(items))
	for _, it := range items {
		reqs = append(reqs, sdk.MessageBatchNewParamsRequest{
			CustomID: it.CustomID,
			Params: sdk.MessageBatchNewParamsRequestParams{
				Model:     sdk.Model(it.Request.Model),
				MaxTokens: it.Request.MaxTokens,
				System:    systemBlocks(it.Request),
				Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(it.Request.User))},
			},
		})
	}
	batch, err := c.client.Messages.Batches.New(ctx, sdk.MessageBatchNewParams{Requests: reqs})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: submit batch")
	}
	return toBatch(batch), nil
}

func (c *sdkClient) Batch(ctx context.Context, batchID string) (*Batch, error) {
	batch, err := c.client.Messages.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("anthropic: get batch %s", batchID))
	}
	return toBatch(batch), nil
}

func (c *sdkClient) Results(ctx context.Context, batchID string) (ResultIterator, error) {
	stream := c.client.Messages.Batches.ResultsStreaming(ctx, batchID)
	if err := stream.Err(); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("anthropic: batch results %s", batchID))
	}
	return &streamIterator{stream: stream}, nil
}

type streamIterator struct {
	stream  *jsonl.Stream[sdk.MessageBatchIndividualResponse]
	current Result
}

func (it *streamIterator) Next() bool {
	if !it.stream.Next() {
		return false
	}
	raw := it.stream.Current()
	it.current = Result{CustomID: raw.CustomID, Type: raw.Result.Type}
	if raw.Result.Type == ResultSucceeded {
		msg := raw.Result.Message
		it.current.Response = toResponse(&msg)
	}
	return true
}

func (it *streamIterator) Result() Result { return it.current }
func (it *streamIterator) Err() error     { return it.stream.Err() }
func (it *streamIterator) Close() error   { return it.stream.Close() }

func systemBlocks(req Request) []sdk.TextBlockParam {
	if req.System == "" {
		return nil
	}
	block := sdk.TextBlockParam{Text: req.System}
	if req.CacheSystem {
		block.CacheControl = sdk.NewCacheControlEphemeralParam()
	}
	return []sdk.TextBlockParam{block}
}

func toResponse(msg *sdk.Message) *Response {
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &Response{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Text:       text.String(),
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:      msg.Usage.InputTokens,
			OutputTokens:     msg.Usage.OutputTokens,
			CacheWriteTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadTokens:  msg.Usage.CacheReadInputTokens,
		},
	}
}

func toBatch(b *sdk.MessageBatch) *Batch {
	return &Batch{
		ID:        b.ID,
		Status:    string(b.ProcessingStatus),
		CreatedAt: b.CreatedAt,
		EndedAt:   b.EndedAt,
		Counts: Counts{
			Processing: b.RequestCounts.Processing,
			Succeeded:  b.RequestCounts.Succeeded,
			Errored:    b.RequestCounts.Errored,
			Canceled:   b.RequestCounts.Canceled,
			Expired:    b.RequestCounts.Expired,
		},
	}
}
