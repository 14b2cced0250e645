package bedrock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	llmprovider "github.com/haowjy/meridian-status-go"
)

const (
	contentTypeJSON = "application/json"

	headerErrorType    = "X-Amzn-Errortype"
	headerRequestID    = "X-Amzn-Requestid"
	headerInputTokens  = "X-Amzn-Bedrock-Input-Token-Count"
	headerOutputTokens = "X-Amzn-Bedrock-Output-Token-Count"
	headerLatency      = "X-Amzn-Bedrock-Invocation-Latency"
)

// rawResponse is a successful response before schema checking.
type rawResponse struct {
	body         []byte
	requestID    string
	latency      string
	inputTokens  int
	outputTokens int
}

// doInvoke performs POST /model/{modelId}/invoke.
func (c *Client) doInvoke(ctx context.Context, model string, body []byte) (*rawResponse, error) {
	// Model ids can be ARNs; escape so the id stays a single path segment.
	endpoint := c.runtimeEndpoint + "/model/" + url.PathEscape(model) + "/invoke"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Content-Type", contentTypeJSON)

	return c.send(ctx, req, body)
}

// doGet performs a signed GET on the control plane.
func (c *Client) doGet(ctx context.Context, path string, query url.Values) (*rawResponse, error) {
	endpoint := c.controlEndpoint + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)

	return c.send(ctx, req, nil)
}

// send signs req, performs exactly one round trip, and maps failures to
// *llmprovider.ProviderError.
func (c *Client) send(ctx context.Context, req *http.Request, body []byte) (*rawResponse, error) {
	if err := c.sign(ctx, req, body); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &llmprovider.ProviderError{
			Provider:  c.Name().String(),
			Code:      llmprovider.ErrorCodeNetwork,
			Message:   err.Error(),
			Retryable: true,
			Err:       llmprovider.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llmprovider.ProviderError{
			Provider:   c.Name().String(),
			Code:       llmprovider.ErrorCodeNetwork,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Err:        llmprovider.ErrProviderUnavailable,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleErrorResponse(resp, respBody)
	}

	out := &rawResponse{
		body:      respBody,
		requestID: resp.Header.Get(headerRequestID),
		latency:   resp.Header.Get(headerLatency),
	}
	out.inputTokens, _ = strconv.Atoi(resp.Header.Get(headerInputTokens))
	out.outputTokens, _ = strconv.Atoi(resp.Header.Get(headerOutputTokens))
	return out, nil
}

// sign adds SigV4 headers for the bedrock signing name.
func (c *Client) sign(ctx context.Context, req *http.Request, body []byte) error {
	if c.credentials == nil {
		return fmt.Errorf("no AWS credentials configured: %w", llmprovider.ErrInvalidAPIKey)
	}
	creds, err := c.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("cannot retrieve AWS credentials: %w: %w", llmprovider.ErrInvalidAPIKey, err)
	}

	payloadHash := sha256.Sum256(body)
	err = c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(payloadHash[:]), signingName, c.region, c.now())
	if err != nil {
		return fmt.Errorf("cannot sign request: %w", err)
	}
	return nil
}

// handleErrorResponse parses a Bedrock error into a ProviderError.
// The code comes from X-Amzn-ErrorType ("ThrottlingException:http://...")
// or the body's __type; the message from "message" or "Message".
func (c *Client) handleErrorResponse(resp *http.Response, body []byte) error {
	code := resp.Header.Get(headerErrorType)
	if i := strings.IndexByte(code, ':'); i >= 0 {
		code = code[:i]
	}
	var message string
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		if code == "" {
			code = doc.Get("__type").String()
			if i := strings.LastIndexByte(code, '#'); i >= 0 {
				code = code[i+1:]
			}
		}
		message = doc.Get("message").String()
		if message == "" {
			message = doc.Get("Message").String()
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	perr := &llmprovider.ProviderError{
		Provider:   c.Name().String(),
		Code:       code,
		StatusCode: resp.StatusCode,
		Message:    message,
	}

	switch {
	case code == "ThrottlingException" || code == "ServiceQuotaExceededException":
		perr.Retryable = true
		perr.Err = llmprovider.ErrRateLimited
	case code == "ModelNotReadyException" || code == "ModelTimeoutException":
		perr.Retryable = true
		perr.Err = llmprovider.ErrProviderUnavailable
	case code == "ResourceNotFoundException":
		perr.Err = llmprovider.ErrInvalidModel
	case code == "ValidationException":
		perr.Err = llmprovider.ErrInvalidRequest
	case code == "ModelErrorException":
		perr.Err = llmprovider.ErrProviderUnavailable
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		perr.Err = llmprovider.ErrInvalidAPIKey
	case resp.StatusCode == http.StatusTooManyRequests:
		perr.Retryable = true
		perr.Err = llmprovider.ErrRateLimited
	case resp.StatusCode >= 500:
		perr.Retryable = true
		perr.Err = llmprovider.ErrProviderUnavailable
	default:
		perr.Err = llmprovider.ErrInvalidRequest
	}
	if perr.Code == "" {
		perr.Code = llmprovider.ErrorCodeUnknown
	}
	return perr
}
