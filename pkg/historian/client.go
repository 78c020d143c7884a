package historian

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

// TagCreator provisions a batch of tags for a region. Implementations never
// abort the batch on a single tag failure; failures are reported in the
// Result.
type TagCreator interface {
	CreateTags(ctx context.Context, tagNames []string, region string) (Result, error)
}

// Config holds PI Web API connection settings.
type Config struct {
	BaseURL    string
	ServerName string
	Username   string
	Password   string
	Timeout    time.Duration
}

// Client provisions tags through the PI Web API.
type Client struct {
	config Config
	http   *http.Client
	logger ectologger.Logger

	dataServerWebID string
}

func NewClient(config Config, logger ectologger.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type pointDefinition struct {
	Name                 string  `json:"Name"`
	PointType            string  `json:"PointType"`
	PointClass           string  `json:"PointClass"`
	CompressionDeviation float64 `json:"CompressionDeviation"`
	ExceptionDeviation   float64 `json:"ExceptionDeviation"`
	PointSource          string  `json:"PointSource"`
}

// CreateTags provisions the batch, skipping tags that already exist. An
// unresolvable region fails the whole batch as one error; individual create
// failures only land in Errors.
func (c *Client) CreateTags(ctx context.Context, tagNames []string, region string) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "historian.Client.CreateTags")
	defer span.End()

	result := Result{Created: []string{}, Skipped: []string{}, Errors: []string{}}

	pointSource, err := PointSourceFor(region)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).WithField("region", region).
			Error("cannot resolve point source for region")
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}

	webID, err := c.resolveDataServer(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}

	for _, tag := range tagNames {
		exists, err := c.tagExists(ctx, tag)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", tag, err))
			continue
		}
		if exists {
			result.Skipped = append(result.Skipped, tag)
			continue
		}

		if err := c.createPoint(ctx, webID, tag, pointSource); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", tag, err))
			continue
		}
		result.Created = append(result.Created, tag)
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"region":  region,
		"created": len(result.Created),
		"skipped": len(result.Skipped),
		"errors":  len(result.Errors),
	}).Info("tag provisioning batch complete")

	return result, nil
}

func (c *Client) resolveDataServer(ctx context.Context) (string, error) {
	if c.dataServerWebID != "" {
		return c.dataServerWebID, nil
	}

	endpoint := fmt.Sprintf("%s/dataservers?name=%s", c.config.BaseURL, url.QueryEscape(c.config.ServerName))
	var resp struct {
		WebID string `json:"WebId"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to resolve data server %s: %w", c.config.ServerName, err)
	}
	c.dataServerWebID = resp.WebID
	return resp.WebID, nil
}

func (c *Client) tagExists(ctx context.Context, tag string) (bool, error) {
	path := fmt.Sprintf("\\\\%s\\%s", c.config.ServerName, tag)
	endpoint := fmt.Sprintf("%s/points?path=%s", c.config.BaseURL, url.QueryEscape(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d looking up tag", resp.StatusCode)
	}
}

func (c *Client) createPoint(ctx context.Context, dataServerWebID, tag, pointSource string) error {
	endpoint := fmt.Sprintf("%s/dataservers/%s/points", c.config.BaseURL, dataServerWebID)
	body := pointDefinition{
		Name:                 tag,
		PointType:            "Float64",
		PointClass:           "classic",
		CompressionDeviation: 0,
		ExceptionDeviation:   0,
		PointSource:          pointSource,
	}
	return c.doJSON(ctx, http.MethodPost, endpoint, body, nil)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(payload))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
}
