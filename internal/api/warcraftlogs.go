package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classic-armory/internal/config"
	"classic-armory/internal/constants"
	"classic-armory/internal/domain"

	"github.com/valyala/fasthttp"
)

// The ranking authority runs a separate deployment per game variant.
func logsHost(gt domain.GameType) string {
	switch gt {
	case domain.GameTypeSeasonal:
		return "sod"
	case domain.GameTypeNormal:
		return "classic"
	default:
		return "vanilla"
	}
}

// RankingQuery addresses one zone-rankings lookup. Size 0 means the default
// roster size; a non-zero Size switches the query to the sized variant.
type RankingQuery struct {
	Name     string
	Server   string
	Region   string
	Metric   string
	SpecName string
	Size     int
	GameType domain.GameType
}

type RankingResponse struct {
	Data struct {
		CharacterData struct {
			Character *struct {
				ID           int           `json:"id"`
				ZoneRankings *ZoneRankings `json:"zoneRankings"`
			} `json:"character"`
		} `json:"characterData"`
	} `json:"data"`
}

// ZoneRankings carries the nested ranking structure. A nil
// BestPerformanceAverage is the upstream sentinel for "no data".
type ZoneRankings struct {
	BestPerformanceAverage *float64 `json:"bestPerformanceAverage"`
	Rankings               []struct {
		Encounter struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"encounter"`
		AllStars *struct {
			RankPercent float64 `json:"rankPercent"`
		} `json:"allStars"`
	} `json:"rankings"`
}

const rankingsQuery = `
query($name: String!, $server: String!, $region: String!, $metric: CharacterRankingMetricType!, $specName: String!, $diff: Int!) {
  characterData {
    character(name: $name, serverSlug: $server, serverRegion: $region) {
      id
      zoneRankings(byBracket: true, metric: $metric, specName: $specName, difficulty: $diff)
    }
  }
}`

const sizedRankingsQuery = `
query($name: String!, $server: String!, $region: String!, $metric: CharacterRankingMetricType!, $specName: String!, $size: Int!) {
  characterData {
    character(name: $name, serverSlug: $server, serverRegion: $region) {
      id
      zoneRankings(byBracket: true, metric: $metric, specName: $specName, size: $size)
    }
  }
}`

type WarcraftLogsClient struct {
	clientID     string
	clientSecret string
	client       *fasthttp.Client
}

func NewWarcraftLogsClient(cfg *config.Config) *WarcraftLogsClient {
	return &WarcraftLogsClient{
		clientID:     cfg.LogsClientID,
		clientSecret: cfg.LogsClientSecret,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Token performs the client-credentials exchange against the deployment for
// the given game variant. The raw body is returned for schema validation.
func (c *WarcraftLogsClient) Token(ctx context.Context, gt domain.GameType) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	req.SetRequestURI(fmt.Sprintf("https://%s.warcraftlogs.com/oauth/token", logsHost(gt)))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(fmt.Sprintf("grant_type=client_credentials&client_id=%s&client_secret=%s",
		c.clientID, c.clientSecret))
	return c.do(ctx, req)
}

func (c *WarcraftLogsClient) ZoneRankings(ctx context.Context, token string, q RankingQuery) (*RankingResponse, error) {
	variables := map[string]any{
		"name":     q.Name,
		"server":   q.Server,
		"region":   q.Region,
		"metric":   q.Metric,
		"specName": q.SpecName,
	}
	query := rankingsQuery
	if q.Size > 0 {
		query = sizedRankingsQuery
		variables["size"] = q.Size
	} else {
		// Seasonal raids carry a fixed difficulty; sized queries do not.
		variables["diff"] = 4
	}

	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	req.SetRequestURI(fmt.Sprintf("https://%s.warcraftlogs.com/api/v2/client", logsHost(q.GameType)))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.SetBody(payload)

	body, status, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("ranking API error: %d: %s", status, body)
	}

	var result RankingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *WarcraftLogsClient) do(ctx context.Context, req *fasthttp.Request) ([]byte, int, error) {
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, 0, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, 0, err
		}
	}

	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}
