package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classic-armory/internal/config"
	"classic-armory/internal/constants"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const oauthTokenURL = "https://oauth.battle.net/token"

// CharacterRef addresses a character (or, for the roster endpoint, a guild)
// at the upstream profile API.
type CharacterRef struct {
	Region string
	Realm  string
	Name   string
	Era    bool
}

// BlizzardClient talks to the upstream profile API. Requests pass through a
// client-side limiter to stay within the upstream per-second quota.
type BlizzardClient struct {
	clientID     string
	clientSecret string
	client       *fasthttp.Client
	limiter      *rate.Limiter
}

func NewBlizzardClient(cfg *config.Config) *BlizzardClient {
	return &BlizzardClient{
		clientID:     cfg.BlizzardClientID,
		clientSecret: cfg.BlizzardClientSecret,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(
			rate.Every(time.Second/constants.UpstreamRequestsPerSecond),
			constants.UpstreamBurst,
		),
	}
}

// Token performs the client-credentials exchange. The raw body is returned
// for schema validation by the caller.
func (c *BlizzardClient) Token(ctx context.Context) ([]byte, int, error) {
	body := fmt.Sprintf("grant_type=client_credentials&client_id=%s&client_secret=%s",
		c.clientID, c.clientSecret)
	return c.doForm(ctx, oauthTokenURL, body)
}

func (c *BlizzardClient) CharacterEquipment(ctx context.Context, token string, ref CharacterRef) ([]byte, int, error) {
	return c.doGet(ctx, token, profileURL(ref, "/equipment"))
}

func (c *BlizzardClient) CharacterProfile(ctx context.Context, token string, ref CharacterRef) ([]byte, int, error) {
	return c.doGet(ctx, token, profileURL(ref, ""))
}

func (c *BlizzardClient) CharacterMedia(ctx context.Context, token string, ref CharacterRef) ([]byte, int, error) {
	return c.doGet(ctx, token, profileURL(ref, "/character-media"))
}

func (c *BlizzardClient) CharacterAchievements(ctx context.Context, token string, ref CharacterRef) ([]byte, int, error) {
	return c.doGet(ctx, token, profileURL(ref, "/achievements/statistics"))
}

func (c *BlizzardClient) CharacterSpecializations(ctx context.Context, token string, ref CharacterRef) ([]byte, int, error) {
	return c.doGet(ctx, token, profileURL(ref, "/specializations"))
}

func (c *BlizzardClient) CharacterPvPSummary(ctx context.Context, token string, ref CharacterRef) ([]byte, int, error) {
	return c.doGet(ctx, token, profileURL(ref, "/pvp-summary"))
}

func (c *BlizzardClient) GuildRoster(ctx context.Context, token string, ref CharacterRef) ([]byte, int, error) {
	url := fmt.Sprintf("https://%s.api.blizzard.com/data/wow/guild/%s/%s/roster?namespace=%s-%s&locale=en_US",
		ref.Region, ref.Realm, ref.Name, namespace(ref.Era), ref.Region)
	return c.doGet(ctx, token, url)
}

func profileURL(ref CharacterRef, extension string) string {
	return fmt.Sprintf("https://%s.api.blizzard.com/profile/wow/character/%s/%s%s?namespace=%s-%s&locale=en_US",
		ref.Region, ref.Realm, strings.ToLower(ref.Name), extension, namespace(ref.Era), ref.Region)
}

func namespace(era bool) string {
	if era {
		return "profile-classic1x"
	}
	return "profile-classic"
}

func (c *BlizzardClient) doGet(ctx context.Context, token, url string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(ctx, req)
}

func (c *BlizzardClient) doForm(ctx context.Context, url, body string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(body)
	return c.do(ctx, req)
}

// do sends the request and returns a copy of the body with the status code.
// Non-2xx statuses are not errors here; the orchestrators decide what each
// status means for the resource in question.
func (c *BlizzardClient) do(ctx context.Context, req *fasthttp.Request) ([]byte, int, error) {
	defer fasthttp.ReleaseRequest(req)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

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
