package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/models"
)

// HTTPConfig configures the REST transport.
type HTTPConfig struct {
	// BaseURL is the backend root, e.g. "https://api.promptkeep.dev".
	// A bare host:port is accepted and normalized to http://.
	BaseURL string

	// Timeout bounds every request. Defaults to 15s.
	Timeout time.Duration

	// TeamID switches the transport to the shared team library scope.
	// Empty means personal-library scope.
	TeamID string
}

type httpTransport struct {
	client *resty.Client
	teamID string
	log    *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPTransport constructs the HTTP/REST implementation of [Transport].
func NewHTTPTransport(cfg HTTPConfig, log *logger.Logger) (Transport, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid transport base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout)

	return &httpTransport{client: cli, teamID: cfg.TeamID, log: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty address")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/"), nil
}

func (h *httpTransport) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpTransport) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// UserID extracts the "sub" claim from the stored bearer token without
// verifying the signature. Verification is the backend's job; the client
// only needs the identity to scope its sync state.
func (h *httpTransport) UserID() (string, error) {
	token := h.Token()
	if token == "" {
		return "", ErrUnauthorized
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse bearer token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token carries no subject")
	}
	return sub, nil
}

// basePath returns the API root for the configured scope.
func (h *httpTransport) basePath() string {
	if h.teamID != "" {
		return "/api/teams/" + h.teamID
	}
	return "/api"
}

func (h *httpTransport) FetchRemotePrompts(ctx context.Context, includeDeleted bool) ([]models.RemotePrompt, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("include_deleted", fmt.Sprintf("%t", includeDeleted)).
		Get(h.basePath() + "/prompts")
	if err != nil {
		return nil, fmt.Errorf("fetch remote prompts request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var items []models.RemotePrompt
	if err = json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("decode remote prompts response: %w", err)
	}
	return items, nil
}

func (h *httpTransport) Upload(ctx context.Context, req models.UploadRequest) (models.UploadResult, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(h.basePath() + "/prompts")
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("upload request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UploadResult{}, err
	}

	var result models.UploadResult
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return models.UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}
	return result, nil
}

func (h *httpTransport) Delete(ctx context.Context, req models.DeleteRequest) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Delete(h.basePath() + "/prompts/" + req.CloudID)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpTransport) CheckQuota(ctx context.Context, uploadCount int, uploadBytes int64) (*models.QuotaWarning, error) {
	req := models.QuotaCheckRequest{UploadCount: uploadCount, UploadBytes: uploadBytes}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(h.basePath() + "/quota/check")
	if err != nil {
		return nil, fmt.Errorf("quota check request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var out models.QuotaCheckResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode quota check response: %w", err)
	}
	return out.Warning, nil
}

func (h *httpTransport) RegisterWorkspace(ctx context.Context, name string) (models.WorkspaceInfo, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"name": name}).
		Post(h.basePath() + "/workspaces")
	if err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("register workspace request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.WorkspaceInfo{}, err
	}

	var info models.WorkspaceInfo
	if err = json.Unmarshal(resp.Body(), &info); err != nil {
		return models.WorkspaceInfo{}, fmt.Errorf("decode workspace response: %w", err)
	}
	return info, nil
}

func (h *httpTransport) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// conflictBody is the JSON shape of a 409 response from the backend.
type conflictBody struct {
	Code            string `json:"code"`
	CloudID         string `json:"cloudId"`
	ExpectedVersion int64  `json:"expectedVersion"`
	ActualVersion   int64  `json:"actualVersion"`
	Message         string `json:"message"`
}

// quotaBody is the JSON shape of a 413 quota rejection.
type quotaBody struct {
	Kind      string `json:"kind"`
	Limit     int64  `json:"limit"`
	Current   int64  `json:"current"`
	Attempted int64  `json:"attempted"`
}

// mapHTTPError converts a non-2xx response into the package's error values.
// All status-code knowledge lives here.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case http.StatusConflict:
		return parseConflict(resp.Body())
	case http.StatusRequestEntityTooLarge:
		return parseQuotaExceeded(resp.Body())
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternalServerError, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}

// parseConflict decodes a 409 body into a *ConflictError. Bodies that carry
// no machine-readable code (older backends respond with plain text) produce
// a legacy conflict, which downstream handling treats as PROMPT_DELETED.
func parseConflict(body []byte) error {
	var cb conflictBody
	if err := json.Unmarshal(body, &cb); err != nil {
		return &ConflictError{Code: ConflictLegacy, Message: strings.TrimSpace(string(body))}
	}

	return &ConflictError{
		Code:            ConflictCode(cb.Code),
		CloudID:         cb.CloudID,
		ExpectedVersion: cb.ExpectedVersion,
		ActualVersion:   cb.ActualVersion,
		Message:         cb.Message,
	}
}

func parseQuotaExceeded(body []byte) error {
	var qb quotaBody
	if err := json.Unmarshal(body, &qb); err != nil {
		return &QuotaExceededError{Kind: "storage"}
	}
	return &QuotaExceededError{
		Kind:      qb.Kind,
		Limit:     qb.Limit,
		Current:   qb.Current,
		Attempted: qb.Attempted,
	}
}
