package chart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
)

const (
	DefaultBaseURL = "https://quickchart.io/chart"
	Width          = 600
	Height         = 400
	BarRadius      = 6
)

var ErrChartUnavailable = errors.New("chart generation failed")

type dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderRadius    int       `json:"borderRadius"`
}

type config struct {
	Type string `json:"type"`
	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []dataset `json:"datasets"`
	} `json:"data"`
	Options struct {
		Title struct {
			Display bool   `json:"display"`
			Text    string `json:"text"`
		} `json:"title"`
		Scales struct {
			YAxes []yAxis `json:"yAxes"`
		} `json:"scales"`
	} `json:"options"`
}

type yAxis struct {
	Ticks struct {
		BeginAtZero bool `json:"beginAtZero"`
	} `json:"ticks"`
}

// QuickChart renders leave series as publicly reachable bar chart images.
type QuickChart struct {
	baseURL    string
	httpClient *http.Client
}

func NewQuickChart(baseURL string) *QuickChart {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &QuickChart{
		baseURL:    strings.TrimRight(baseURL, "?"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// URL encodes the series of one employee into a chart image URL. Date labels
// are shown with slashes.
func (q *QuickChart) URL(name string, series leave.LeaveSeries) (string, error) {
	var cfg config
	cfg.Type = "bar"
	cfg.Data.Labels = make([]string, len(series.Labels))
	for i, l := range series.Labels {
		cfg.Data.Labels[i] = strings.ReplaceAll(l, "-", "/")
	}
	cfg.Data.Datasets = make([]dataset, len(series.Datasets))
	for i, ds := range series.Datasets {
		cfg.Data.Datasets[i] = dataset{
			Label:           ds.Label,
			Data:            ds.Data,
			BackgroundColor: ds.BackgroundColor,
			BorderRadius:    BarRadius,
		}
	}
	cfg.Options.Title.Display = true
	cfg.Options.Title.Text = "Leave Usage Summary - " + name
	axis := yAxis{}
	axis.Ticks.BeginAtZero = true
	cfg.Options.Scales.YAxes = []yAxis{axis}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode chart config: %w", err)
	}

	return fmt.Sprintf("%s?c=%s&width=%d&height=%d&version=2",
		q.baseURL, url.QueryEscape(string(raw)), Width, Height), nil
}

// Check issues a HEAD request against a chart URL so a broken chart is
// detected before it is embedded in an email.
func (q *QuickChart) Check(ctx context.Context, chartURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, chartURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChartUnavailable, err)
	}
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChartUnavailable, err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrChartUnavailable, resp.StatusCode)
	}
	return nil
}

// Render builds and checks the chart URL in one step.
func (q *QuickChart) Render(ctx context.Context, name string, series leave.LeaveSeries) (string, error) {
	chartURL, err := q.URL(name, series)
	if err != nil {
		return "", err
	}
	if err := q.Check(ctx, chartURL); err != nil {
		return "", err
	}
	return chartURL, nil
}
