package transcript

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tubetext/internal/httpclient"
)

// fetchTranscriptList runs one full pass of the scrape sequence: watch page
// (with consent handling), API key extraction, player API call, playability
// classification and catalog construction.
func (c *Client) fetchTranscriptList(ctx context.Context, client *httpclient.Client, videoID string) (*TranscriptList, error) {
	pageHTML, err := c.fetchVideoPage(ctx, client, videoID)
	if err != nil {
		return nil, err
	}

	apiKey, err := extractAPIKey(pageHTML, videoID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(innertubeRequest{
		Context: innertubeContext{
			Client: innertubeClient{
				ClientName:    innertubeClientName,
				ClientVersion: innertubeClientVersion,
			},
		},
		VideoID: videoID,
	})
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(ctx, c.playerAPI+apiKey, payload, map[string]string{
		"Content-Type": "application/json",
	})
	body, err := checkResponse(videoID, resp, err)
	if err != nil {
		return nil, err
	}

	var player playerResponse
	if err := json.Unmarshal(body, &player); err != nil {
		return nil, &VideoError{Kind: KindDataUnparsable, VideoID: videoID}
	}

	if err := classifyPlayability(videoID, player.PlayabilityStatus); err != nil {
		return nil, err
	}

	if player.Captions == nil || player.Captions.Renderer == nil ||
		len(player.Captions.Renderer.CaptionTracks) == 0 {
		return nil, &VideoError{Kind: KindTranscriptsDisabled, VideoID: videoID}
	}

	return newTranscriptList(client, videoID, player.Captions.Renderer), nil
}

// fetchVideoPage GETs the watch page. When the body is the cookie consent
// form instead, a CONSENT cookie is set from the form value and the page is
// fetched once more; a second consent form is a terminal failure.
func (c *Client) fetchVideoPage(ctx context.Context, client *httpclient.Client, videoID string) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := client.Get(ctx, c.watchPage+videoID, nil)
		body, err := checkResponse(videoID, resp, err)
		if err != nil {
			return "", err
		}

		pageHTML := string(body)
		if !strings.Contains(pageHTML, consentFormMarker) {
			return pageHTML, nil
		}
		if attempt > 0 {
			break
		}

		if err := createConsentCookie(client, pageHTML, videoID); err != nil {
			return "", err
		}
	}

	return "", &VideoError{Kind: KindConsentCookieFailed, VideoID: videoID}
}

func createConsentCookie(client *httpclient.Client, pageHTML, videoID string) error {
	match := consentValueRE.FindStringSubmatch(pageHTML)
	if match == nil {
		return &VideoError{Kind: KindConsentCookieFailed, VideoID: videoID}
	}

	client.SetCookie("CONSENT", "YES+"+match[1], ".youtube.com")
	return nil
}

func extractAPIKey(pageHTML, videoID string) (string, error) {
	if match := apiKeyRE.FindStringSubmatch(pageHTML); match != nil {
		return match[1], nil
	}

	if strings.Contains(pageHTML, captchaMarker) {
		return "", &VideoError{Kind: KindIPBlocked, VideoID: videoID}
	}
	return "", &VideoError{Kind: KindDataUnparsable, VideoID: videoID}
}

func classifyPlayability(videoID string, status *playabilityStatus) error {
	if status == nil || status.Status == "" || status.Status == "OK" {
		return nil
	}

	reason := status.Reason

	switch status.Status {
	case "LOGIN_REQUIRED":
		if strings.Contains(reason, "not a bot") {
			return &VideoError{Kind: KindRequestBlocked, VideoID: videoID}
		}
		if strings.Contains(reason, "inappropriate") {
			return &VideoError{Kind: KindAgeRestricted, VideoID: videoID}
		}
	case "ERROR":
		if strings.Contains(reason, "unavailable") {
			if strings.Contains(videoID, "://") || strings.Contains(videoID, "/") {
				return &VideoError{Kind: KindInvalidVideoID, VideoID: videoID}
			}
			return &VideoError{Kind: KindVideoUnavailable, VideoID: videoID}
		}
	}

	var subReasons []string
	if status.ErrorScreen != nil && status.ErrorScreen.PlayerErrorMessageRenderer != nil {
		subReasons = status.ErrorScreen.PlayerErrorMessageRenderer.Subreason.subReasons()
	}

	return &VideoError{
		Kind:       KindVideoUnplayable,
		VideoID:    videoID,
		Reason:     reason,
		SubReasons: subReasons,
	}
}

// checkResponse applies the status policy shared by every pipeline request:
// 429 is always a block signal regardless of body, any other non-2xx is a
// plain request failure carrying the status code.
func checkResponse(videoID string, resp *httpclient.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, &VideoError{Kind: KindRequestFailed, VideoID: videoID, Reason: err.Error()}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &VideoError{Kind: KindIPBlocked, VideoID: videoID}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &VideoError{Kind: KindRequestFailed, VideoID: videoID, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
