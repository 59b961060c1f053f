package spreadsheet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

const sheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

var sheetsScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets.readonly",
}

// GoogleSheetRoster reads the roster tab of a Google spreadsheet with a
// service account.
type GoogleSheetRoster struct {
	client     *http.Client
	baseURL    string
	sheetID    string
	sheetTitle string
}

// NewGoogleSheetRoster authenticates as the service account identified by
// email and PEM privateKey. Escaped "\n" sequences in the key are expanded.
func NewGoogleSheetRoster(ctx context.Context, email, privateKey, sheetID, sheetTitle string) *GoogleSheetRoster {
	conf := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(strings.ReplaceAll(privateKey, `\n`, "\n")),
		Scopes:     sheetsScopes,
		TokenURL:   google.JWTTokenURL,
	}
	return NewGoogleSheetRosterWithClient(conf.Client(ctx), sheetsBaseURL, sheetID, sheetTitle)
}

// NewGoogleSheetRosterWithClient uses an already authorized HTTP client.
func NewGoogleSheetRosterWithClient(client *http.Client, baseURL, sheetID, sheetTitle string) *GoogleSheetRoster {
	if sheetTitle == "" {
		sheetTitle = DefaultSheetTitle
	}
	return &GoogleSheetRoster{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		sheetID:    sheetID,
		sheetTitle: sheetTitle,
	}
}

type valueRange struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// ListEmployees implements leave.RosterSource.
func (g *GoogleSheetRoster) ListEmployees(ctx context.Context) ([]leave.EmployeeRecord, error) {
	rows, err := g.values(ctx)
	if err != nil {
		return nil, err
	}
	return ParseRoster(rows)
}

func (g *GoogleSheetRoster) values(ctx context.Context) ([][]string, error) {
	sheetRange := "'" + strings.ReplaceAll(g.sheetTitle, "'", "''") + "'"
	endpoint := fmt.Sprintf("%s/%s/values/%s?valueRenderOption=FORMATTED_VALUE",
		g.baseURL, url.PathEscape(g.sheetID), url.PathEscape(sheetRange))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %q: %s", ErrSheetNotFound, g.sheetTitle, strings.TrimSpace(string(body)))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sheets: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var vr valueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("sheets: failed to decode values: %w", err)
	}
	return vr.Values, nil
}
