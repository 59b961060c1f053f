package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
)

const DefaultBaseURL = "https://app.asana.com/api/1.0"

// Client reads leave tasks and workspace users from the Asana REST API.
type Client struct {
	baseURL    string
	token      string
	pageLimit  int
	httpClient *http.Client
}

func NewClient(baseURL, token string, pageLimit int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageLimit <= 0 || pageLimit > 100 {
		pageLimit = 100
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		pageLimit:  pageLimit,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type customField struct {
	GID          string  `json:"gid"`
	Name         string  `json:"name"`
	DisplayValue *string `json:"display_value"`
}

type task struct {
	GID          string        `json:"gid"`
	CustomFields []customField `json:"custom_fields"`
}

type user struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type nextPage struct {
	Offset string `json:"offset"`
}

type page[T any] struct {
	Data     []T       `json:"data"`
	NextPage *nextPage `json:"next_page"`
}

type apiError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ListLeaveTasks implements leave.TaskSource. Only custom field names and
// display values are requested.
func (c *Client) ListLeaveTasks(ctx context.Context, projectID string) ([]leave.RawLeaveTask, error) {
	if projectID == "" {
		return nil, fmt.Errorf("asana: project id is required")
	}

	query := url.Values{}
	query.Set("opt_fields", "custom_fields.name,custom_fields.display_value")

	tasks, err := listAll[task](ctx, c, "/projects/"+url.PathEscape(projectID)+"/tasks", query)
	if err != nil {
		return nil, err
	}

	result := make([]leave.RawLeaveTask, 0, len(tasks))
	for _, t := range tasks {
		raw := leave.RawLeaveTask{
			ID:         t.GID,
			Attributes: make([]leave.Attribute, 0, len(t.CustomFields)),
		}
		for _, f := range t.CustomFields {
			attr := leave.Attribute{Name: f.Name}
			if f.DisplayValue != nil {
				attr.Value = *f.DisplayValue
				attr.HasValue = true
			}
			raw.Attributes = append(raw.Attributes, attr)
		}
		result = append(result, raw)
	}
	return result, nil
}

// ListUsers implements leave.DirectorySource.
func (c *Client) ListUsers(ctx context.Context, workspaceID string) ([]leave.DirectoryUser, error) {
	query := url.Values{}
	query.Set("opt_fields", "email,name")
	if workspaceID != "" {
		query.Set("workspace", workspaceID)
	}

	users, err := listAll[user](ctx, c, "/users", query)
	if err != nil {
		return nil, err
	}

	result := make([]leave.DirectoryUser, 0, len(users))
	for _, u := range users {
		result = append(result, leave.DirectoryUser{Name: u.Name, Email: u.Email})
	}
	return result, nil
}

// listAll follows next_page offsets until the collection is exhausted.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T
	offset := ""
	for {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("limit", strconv.Itoa(c.pageLimit))
		if offset != "" {
			q.Set("offset", offset)
		}

		var p page[T]
		if err := c.get(ctx, path, q, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Data...)

		if p.NextPage == nil || p.NextPage.Offset == "" {
			return all, nil
		}
		offset = p.NextPage.Offset
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("asana: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("asana: request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && len(apiErr.Errors) > 0 {
			return fmt.Errorf("asana: %s returned %d: %s", path, resp.StatusCode, apiErr.Errors[0].Message)
		}
		return fmt.Errorf("asana: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("asana: failed to decode %s response: %w", path, err)
	}
	return nil
}
