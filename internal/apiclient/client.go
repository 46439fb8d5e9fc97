// Package apiclient is the networked delivery strategy: it drives the
// judge's admin API to create problems and upload their packaged test data.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jjudge-oj/fps-import/config"
	"github.com/jjudge-oj/fps-import/internal/testcase"
	"github.com/jjudge-oj/fps-import/types"
)

const (
	loginPath    = "/api/admin/login"
	problemPath  = "/api/admin/problem"
	testCasePath = "/api/admin/test_case"

	defaultTimeout = 60 * time.Second
)

// Client talks to the judge's admin API. Authentication happens once per
// batch: the session token obtained by Login is reused for every item.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	token      string
}

func New(cfg config.JudgeAPIConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// envelope is the judge API's response wrapper. A populated Error field
// means the call failed even when the HTTP status is 200.
type envelope struct {
	Error *string         `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// Login authenticates with the configured admin credential and stores the
// session token on the client.
func (c *Client) Login(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return err
	}

	data, err := c.postJSON(ctx, loginPath, payload)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("login: decode response: %w", err)
	}
	if strings.TrimSpace(parsed.Token) == "" {
		return errors.New("login: missing token in response")
	}

	c.token = parsed.Token
	return nil
}

// Deliver creates the problem remotely and, when it has test cases, uploads
// the packaged data. A create success followed by an upload failure still
// fails the item, but the remote problem record is left in place and its id
// is reported so a later run can repair the data.
func (c *Client) Deliver(
	ctx context.Context,
	problem types.Problem,
	manifest types.TestCaseManifest,
	dir string,
) (types.DeliveryResult, error) {
	if c.token == "" {
		if err := c.Login(ctx); err != nil {
			return types.DeliveryResult{}, err
		}
	}

	remoteID, err := c.createProblem(ctx, problem)
	if err != nil {
		return types.DeliveryResult{}, err
	}
	result := types.DeliveryResult{RemoteID: remoteID}

	if len(manifest.TestCases) == 0 {
		return result, nil
	}

	bundle, err := testcase.PackageZip(dir, manifest)
	if err != nil {
		return result, fmt.Errorf("package test data: %w", err)
	}
	if err := c.uploadTestCases(ctx, remoteID, bundle); err != nil {
		return result, fmt.Errorf("upload test data: %w", err)
	}

	return result, nil
}

func (c *Client) createProblem(ctx context.Context, problem types.Problem) (string, error) {
	payload, err := json.Marshal(problem)
	if err != nil {
		return "", err
	}

	data, err := c.postJSON(ctx, problemPath, payload)
	if err != nil {
		return "", fmt.Errorf("create problem: %w", err)
	}

	var parsed struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("create problem: decode response: %w", err)
	}
	if parsed.ID == 0 {
		return "", errors.New("create problem: missing id in response")
	}
	return strconv.FormatInt(parsed.ID, 10), nil
}

func (c *Client) uploadTestCases(ctx context.Context, remoteID string, bundle []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("problem_id", remoteID); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("file", "testdata.zip")
	if err != nil {
		return err
	}
	if _, err := part.Write(bundle); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+testCasePath, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = decodeEnvelope(resp)
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeEnvelope(resp *http.Response) (json.RawMessage, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed envelope
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil && *parsed.Error != "" {
		return nil, fmt.Errorf("api error: %s", *parsed.Error)
	}
	return parsed.Data, nil
}
