// Package athena wraps the interactive query engine behind the small
// submit/poll/fetch surface the read endpoints need.
package athena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"go.uber.org/zap"

	"github.com/yourorg/data-lake-api/internal/metrics"
)

var (
	// ErrQueryFailed means the remote query reached FAILED or CANCELLED.
	ErrQueryFailed = errors.New("query failed")
	// ErrQueryTimeout means the query did not reach a terminal state within
	// the configured maximum wait.
	ErrQueryTimeout = errors.New("query timed out")
)

// Page is one page of query results, shaped for JSON responses: one
// column-name→value map per data row.
type Page struct {
	Columns   []string            `json:"-"`
	Data      []map[string]string `json:"data"`
	NextToken *string             `json:"next_token"`
}

// Engine is what the read handlers depend on; satisfied by *Client and by
// test fakes.
type Engine interface {
	Run(ctx context.Context, sql, pageToken string, maxResults int32) (Page, error)
}

// athenaAPI is the subset of the Athena client we use; allows test fakes.
type athenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// Options bound the poll loop. Zero values take the defaults below.
type Options struct {
	PollInterval    time.Duration // first sleep between polls
	MaxPollInterval time.Duration // backoff cap
	MaxWait         time.Duration // total budget before ErrQueryTimeout
}

func (o *Options) applyDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 250 * time.Millisecond
	}
	if o.MaxPollInterval <= 0 {
		o.MaxPollInterval = 4 * time.Second
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 2 * time.Minute
	}
}

type Client struct {
	api            athenaAPI
	database       string
	outputLocation string
	opts           Options
	log            *zap.Logger
}

// New builds a client against AWS Athena. database is the Glue catalog
// database holding the lake tables; outputLocation is the s3:// prefix
// Athena writes result sets to.
func New(ctx context.Context, database, outputLocation string, opts Options, log *zap.Logger) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return newClient(athena.NewFromConfig(cfg), database, outputLocation, opts, log), nil
}

func newClient(api athenaAPI, database, outputLocation string, opts Options, log *zap.Logger) *Client {
	opts.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{api: api, database: database, outputLocation: outputLocation, opts: opts, log: log}
}

// Submit starts a query execution and returns its id.
func (c *Client) Submit(ctx context.Context, sql string) (string, error) {
	out, err := c.api.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString:           aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{Database: aws.String(c.database)},
		ResultConfiguration:   &types.ResultConfiguration{OutputLocation: aws.String(c.outputLocation)},
	})
	if err != nil {
		return "", fmt.Errorf("start query execution: %w", err)
	}
	return aws.ToString(out.QueryExecutionId), nil
}

// Poll returns the current execution state and, for terminal failures, the
// engine's state change reason.
func (c *Client) Poll(ctx context.Context, queryID string) (types.QueryExecutionState, string, error) {
	out, err := c.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(queryID),
	})
	if err != nil {
		return "", "", fmt.Errorf("get query execution: %w", err)
	}
	status := out.QueryExecution.Status
	return status.State, aws.ToString(status.StateChangeReason), nil
}

// FetchResults returns one page of results. Row 0 of a fetched result set
// is the column-name header; data rows follow.
func (c *Client) FetchResults(ctx context.Context, queryID, pageToken string, maxResults int32) (Page, error) {
	in := &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(queryID),
		MaxResults:       aws.Int32(maxResults),
	}
	if pageToken != "" {
		in.NextToken = aws.String(pageToken)
	}
	out, err := c.api.GetQueryResults(ctx, in)
	if err != nil {
		return Page{}, fmt.Errorf("get query results: %w", err)
	}

	rows := out.ResultSet.Rows
	if len(rows) == 0 {
		return Page{Data: []map[string]string{}, NextToken: out.NextToken}, nil
	}
	columns := make([]string, 0, len(rows[0].Data))
	for _, d := range rows[0].Data {
		columns = append(columns, aws.ToString(d.VarCharValue))
	}
	data := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(columns))
		for i, d := range row.Data {
			if i >= len(columns) {
				break
			}
			m[columns[i]] = aws.ToString(d.VarCharValue)
		}
		data = append(data, m)
	}
	return Page{Columns: columns, Data: data, NextToken: out.NextToken}, nil
}

// Run submits sql, waits for a terminal state under the configured bounds
// (exponential backoff between polls) and fetches one result page.
func (c *Client) Run(ctx context.Context, sql, pageToken string, maxResults int32) (Page, error) {
	start := time.Now()
	queryID, err := c.Submit(ctx, sql)
	if err != nil {
		return Page{}, err
	}

	interval := c.opts.PollInterval
	deadline := start.Add(c.opts.MaxWait)
	for {
		state, reason, err := c.Poll(ctx, queryID)
		if err != nil {
			return Page{}, err
		}
		switch state {
		case types.QueryExecutionStateSucceeded:
			metrics.QuerySeconds.Observe(time.Since(start).Seconds())
			return c.FetchResults(ctx, queryID, pageToken, maxResults)
		case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
			metrics.QuerySeconds.Observe(time.Since(start).Seconds())
			c.log.Warn("query terminal failure",
				zap.String("query_id", queryID),
				zap.String("state", string(state)),
				zap.String("reason", reason))
			return Page{}, fmt.Errorf("%w: %s: %s", ErrQueryFailed, state, reason)
		}
		if time.Now().After(deadline) {
			return Page{}, fmt.Errorf("%w: query %s still %s after %s", ErrQueryTimeout, queryID, state, c.opts.MaxWait)
		}
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-time.After(interval):
		}
		if interval *= 2; interval > c.opts.MaxPollInterval {
			interval = c.opts.MaxPollInterval
		}
	}
}
