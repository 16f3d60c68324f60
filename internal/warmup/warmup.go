// Package warmup keeps Lambda instances warm. CloudWatch Events send a
// warmup event periodically; the handler can fan out asynchronous
// self-invocations so several instances stay warm at once. Every instance
// answers with the size of the dictionary it has loaded.
package warmup

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/pricofy/word-translator/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Source identifies warmup events from CloudWatch
	Source = "warmup"

	// Delay keeps this instance busy long enough for the self-invocations
	// to land on other instances.
	Delay = 75 * time.Millisecond
)

// Event is the CloudWatch Event payload for warmup.
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Response is the body of a warmup reply.
type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
	Languages       int    `json:"languages"`
	Words           int    `json:"words"`
}

// Invoker is the part of the Lambda client used for self-invocation.
type Invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// NewLambdaInvoker builds an Invoker from the default AWS configuration.
func NewLambdaInvoker(ctx context.Context) (Invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// Detect reports whether raw is a warmup event. Anything else, including
// undecodable input, is left to the request dispatcher.
func Detect(raw []byte) (*Event, bool) {
	if json.Get(raw, "source").ToString() != Source {
		return nil, false
	}
	// Concurrency is optional and defaults to 0.
	return &Event{Source: Source, Concurrency: json.Get(raw, "concurrency").ToInt()}, true
}

// Option configures a Warmer.
type Option func(*Warmer)

// WithMetrics records every warmup in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Warmer) {
		w.metrics = m
	}
}

// WithDictionary reports the loaded dictionary in each reply. stats returns
// the number of words per language.
func WithDictionary(stats func() map[string]int) Option {
	return func(w *Warmer) {
		w.stats = stats
	}
}

// Warmer answers warmup events.
type Warmer struct {
	functionName string
	newInvoker   func(context.Context) (Invoker, error)
	delay        time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
	stats        func() map[string]int
}

// NewWarmer creates a Warmer for the current function. newInvoker is called
// lazily, only when an event asks for extra instances; nil means NewLambdaInvoker.
func NewWarmer(newInvoker func(context.Context) (Invoker, error), logger *slog.Logger, opts ...Option) *Warmer {
	if newInvoker == nil {
		newInvoker = NewLambdaInvoker
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Warmer{
		functionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		newInvoker:   newInvoker,
		delay:        Delay,
		logger:       logger.With("op", "warmup"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handle answers a warmup event, fanning out ev.Concurrency self-invocations.
// Failed invocations are logged and counted, never returned.
func (w *Warmer) Handle(ctx context.Context, ev *Event) (map[string]interface{}, error) {
	start := time.Now()

	invoked, failed := 0, 0
	if ev.Concurrency > 0 {
		var err error
		invoked, failed, err = w.selfInvoke(ctx, ev.Concurrency)
		if err != nil {
			w.logger.WarnContext(ctx, "Warmup self-invoke failed",
				"concurrency", ev.Concurrency, "failed", failed, "error", err)
		}
	}
	w.metrics.RecordWarmup(invoked, failed)

	time.Sleep(w.delay)

	resp := Response{Status: "warm", InstancesWarmed: 1 + invoked}
	if w.stats != nil {
		stats := w.stats()
		resp.Languages = len(stats)
		for _, n := range stats {
			resp.Words += n
		}
	}

	w.logger.InfoContext(ctx, "Warm",
		"instances", resp.InstancesWarmed,
		"languages", resp.Languages,
		"words", resp.Words,
		"duration", time.Since(start))

	return map[string]interface{}{
		"statusCode": 200,
		"body":       resp,
	}, nil
}

// selfInvoke fires count asynchronous invocations of this function and
// reports how many were accepted. err is the first failure, if any.
func (w *Warmer) selfInvoke(ctx context.Context, count int) (invoked, failed int, err error) {
	client, err := w.newInvoker(ctx)
	if err != nil {
		return 0, count, err
	}

	// Child invocations carry concurrency 0 so they never fan out again.
	payload, err := json.Marshal(Event{Source: Source})
	if err != nil {
		return 0, count, err
	}

	results := make(chan error, count)
	for i := 0; i < count; i++ {
		go func() {
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			results <- err
		}()
	}

	for i := 0; i < count; i++ {
		if e := <-results; e != nil {
			failed++
			if err == nil {
				err = e
			}
			continue
		}
		invoked++
	}
	return invoked, failed, err
}
