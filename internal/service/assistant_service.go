package service

import (
	"context"

	"f1-assistant-be/internal/dto"
	"f1-assistant-be/internal/pkg/logger"
	"f1-assistant-be/internal/pkg/serverutils"
	"f1-assistant-be/pkg/assistant/router"
	"f1-assistant-be/pkg/llm"
)

// IAssistantService defines the assistant service interface
type IAssistantService interface {
	ProcessQuery(ctx context.Context, request *dto.ProcessQueryRequest) (*dto.ProcessQueryResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
	Models(ctx context.Context) (*dto.ModelsResponse, error)
}

type assistantService struct {
	queryRouter *router.Router
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewAssistantService(queryRouter *router.Router, llmProvider llm.LLMProvider, sysLogger logger.ILogger) IAssistantService {
	return &assistantService{
		queryRouter: queryRouter,
		llmProvider: llmProvider,
		logger:      sysLogger,
	}
}

func (s *assistantService) ProcessQuery(ctx context.Context, request *dto.ProcessQueryRequest) (*dto.ProcessQueryResponse, error) {
	if err := serverutils.ValidateRequest(request); err != nil {
		return nil, err
	}

	resp, err := s.queryRouter.ProcessQuery(ctx, request.ToDomain())
	if err != nil {
		s.logger.Error("ASSISTANT", "Query processing failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("ASSISTANT", "Query processed", map[string]interface{}{
		"request_id":  resp.Metadata.RequestID,
		"category":    string(resp.Category),
		"handler":     resp.HandlerName,
		"elapsed_ms":  resp.Metadata.ProcessingTimeMs,
		"tokens_used": resp.Metadata.TokensUsed,
	})

	return dto.FromDomainResponse(resp), nil
}

func (s *assistantService) Health(ctx context.Context) *dto.HealthResponse {
	checker, ok := s.llmProvider.(llm.HealthChecker)
	if !ok {
		return &dto.HealthResponse{
			Status:       "unknown",
			LLMReachable: false,
			Message:      "configured provider does not expose a health endpoint",
		}
	}

	status := checker.Health(ctx)
	result := &dto.HealthResponse{
		LLMReachable:    status.Healthy,
		ModelsAvailable: status.ModelsAvailable,
		Message:         status.Message,
	}
	if status.Healthy {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
	}
	return result
}

func (s *assistantService) Models(ctx context.Context) (*dto.ModelsResponse, error) {
	checker, ok := s.llmProvider.(llm.HealthChecker)
	if !ok {
		return &dto.ModelsResponse{Models: []string{}}, nil
	}

	models, err := checker.Models(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ModelsResponse{Models: models}, nil
}
