package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/logging"
)

// Runner performs one detection pass.
type Runner interface {
	Run(ctx context.Context) (*modelwatch.Result, error)
}

// Response is the API Gateway style result returned to the invoker.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Body is the JSON document carried in Response.Body.
type Body struct {
	Message   string              `json:"message"`
	NewModels map[string][]string `json:"new_models"`
	modelwatch.Report
}

// Handler adapts a Runner to the Lambda programming model.
type Handler struct {
	runner Runner
}

// NewHandler returns a handler running r on every invocation.
func NewHandler(r Runner) *Handler {
	return &Handler{runner: r}
}

// Handle ignores the triggering event; every invocation is a full pass.
// Configuration errors fail the invocation. Partial failures return 207.
func (h *Handler) Handle(ctx context.Context, _ json.RawMessage) (Response, error) {
	result, err := h.runner.Run(ctx)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Detection run aborted")
		return Response{}, err
	}

	report := result.Report()
	body := Body{
		Message:   result.Summary(),
		NewModels: report.NewItems,
		Report:    report,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, errors.WrapParse("json", "response", err)
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusMultiStatus
	}
	return Response{StatusCode: status, Body: string(data)}, nil
}
