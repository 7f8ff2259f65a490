package transcript

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"tubetext/internal/httpclient"
)

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()

	var videoErr *VideoError
	if !errors.As(err, &videoErr) {
		t.Fatalf("error is %T, want *VideoError", err)
	}
	return videoErr.Kind
}

func TestExtractAPIKey(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		page := `<script>"INNERTUBE_API_KEY": "AIzaSyAO_x-abc_123"</script>`

		key, err := extractAPIKey(page, "video000001")
		if err != nil {
			t.Fatalf("extractAPIKey returned error %v, want nil", err)
		}
		if key != "AIzaSyAO_x-abc_123" {
			t.Fatalf("extractAPIKey returned %s, want the embedded key", key)
		}
	})

	t.Run("captcha page", func(t *testing.T) {
		page := `<div class="g-recaptcha" data-sitekey="x"></div>`

		_, err := extractAPIKey(page, "video000001")
		if kind := kindOf(t, err); kind != KindIPBlocked {
			t.Fatalf("error kind is %s, want %s", kind, KindIPBlocked)
		}
	})

	t.Run("unrecognized page", func(t *testing.T) {
		_, err := extractAPIKey("<html>something else</html>", "video000001")
		if kind := kindOf(t, err); kind != KindDataUnparsable {
			t.Fatalf("error kind is %s, want %s", kind, KindDataUnparsable)
		}
	})
}

func TestCreateConsentCookie(t *testing.T) {
	t.Run("form value found", func(t *testing.T) {
		client := httpclient.New(nil, 0)
		page := `<form action="https://consent.youtube.com/s"><input name="v" value="cb.20210328-17-p0"></form>`

		if err := createConsentCookie(client, page, "video000001"); err != nil {
			t.Fatalf("createConsentCookie returned error %v, want nil", err)
		}
	})

	t.Run("form value missing", func(t *testing.T) {
		client := httpclient.New(nil, 0)

		err := createConsentCookie(client, "<form></form>", "video000001")
		if kind := kindOf(t, err); kind != KindConsentCookieFailed {
			t.Fatalf("error kind is %s, want %s", kind, KindConsentCookieFailed)
		}
	})
}

func TestClassifyPlayability(t *testing.T) {
	t.Run("ok and absent statuses pass", func(t *testing.T) {
		if err := classifyPlayability("video000001", nil); err != nil {
			t.Fatalf("classifyPlayability returned %v for nil status, want nil", err)
		}
		if err := classifyPlayability("video000001", &playabilityStatus{Status: "OK"}); err != nil {
			t.Fatalf("classifyPlayability returned %v for OK, want nil", err)
		}
		if err := classifyPlayability("video000001", &playabilityStatus{}); err != nil {
			t.Fatalf("classifyPlayability returned %v for empty status, want nil", err)
		}
	})

	t.Run("bot check", func(t *testing.T) {
		status := &playabilityStatus{
			Status: "LOGIN_REQUIRED",
			Reason: "Sign in to confirm you're not a bot",
		}
		if kind := kindOf(t, classifyPlayability("video000001", status)); kind != KindRequestBlocked {
			t.Fatalf("error kind is %s, want %s", kind, KindRequestBlocked)
		}
	})

	t.Run("age restriction", func(t *testing.T) {
		status := &playabilityStatus{
			Status: "LOGIN_REQUIRED",
			Reason: "This video may be inappropriate for some users.",
		}
		if kind := kindOf(t, classifyPlayability("video000001", status)); kind != KindAgeRestricted {
			t.Fatalf("error kind is %s, want %s", kind, KindAgeRestricted)
		}
	})

	t.Run("video unavailable", func(t *testing.T) {
		status := &playabilityStatus{Status: "ERROR", Reason: "This video is unavailable"}
		if kind := kindOf(t, classifyPlayability("video000001", status)); kind != KindVideoUnavailable {
			t.Fatalf("error kind is %s, want %s", kind, KindVideoUnavailable)
		}
	})

	t.Run("url passed as id", func(t *testing.T) {
		status := &playabilityStatus{Status: "ERROR", Reason: "This video is unavailable"}
		err := classifyPlayability("https://www.youtube.com/watch?v=x", status)
		if kind := kindOf(t, err); kind != KindInvalidVideoID {
			t.Fatalf("error kind is %s, want %s", kind, KindInvalidVideoID)
		}
	})

	t.Run("other failure is unplayable with subreasons", func(t *testing.T) {
		raw := `{
			"status": "UNPLAYABLE",
			"reason": "Video blocked",
			"errorScreen": {
				"playerErrorMessageRenderer": {
					"subreason": {"runs": [{"text": "Blocked in your country"}]}
				}
			}
		}`
		var status playabilityStatus
		if err := json.Unmarshal([]byte(raw), &status); err != nil {
			t.Fatalf("unmarshalling fixture failed: %v", err)
		}

		err := classifyPlayability("video000001", &status)
		var videoErr *VideoError
		if !errors.As(err, &videoErr) {
			t.Fatalf("error is %T, want *VideoError", err)
		}
		if videoErr.Kind != KindVideoUnplayable {
			t.Fatalf("error kind is %s, want %s", videoErr.Kind, KindVideoUnplayable)
		}
		if videoErr.Reason != "Video blocked" {
			t.Fatalf("reason is %q, want the status reason", videoErr.Reason)
		}
		if len(videoErr.SubReasons) != 1 || videoErr.SubReasons[0] != "Blocked in your country" {
			t.Fatalf("subreasons are %v, want the error screen runs", videoErr.SubReasons)
		}
	})
}

func TestCheckResponse(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		_, err := checkResponse("video000001", nil, errors.New("dial tcp: refused"))

		var videoErr *VideoError
		if !errors.As(err, &videoErr) {
			t.Fatalf("error is %T, want *VideoError", err)
		}
		if videoErr.Kind != KindRequestFailed {
			t.Fatalf("error kind is %s, want %s", videoErr.Kind, KindRequestFailed)
		}
		if videoErr.Reason == "" {
			t.Fatal("transport error was not carried in the reason")
		}
	})

	t.Run("429 is a block", func(t *testing.T) {
		resp := &httpclient.Response{StatusCode: http.StatusTooManyRequests, Body: []byte("irrelevant")}

		_, err := checkResponse("video000001", resp, nil)
		if kind := kindOf(t, err); kind != KindIPBlocked {
			t.Fatalf("error kind is %s, want %s", kind, KindIPBlocked)
		}
	})

	t.Run("other non-2xx is a request failure", func(t *testing.T) {
		resp := &httpclient.Response{StatusCode: http.StatusServiceUnavailable}

		_, err := checkResponse("video000001", resp, nil)
		var videoErr *VideoError
		if !errors.As(err, &videoErr) {
			t.Fatalf("error is %T, want *VideoError", err)
		}
		if videoErr.Kind != KindRequestFailed {
			t.Fatalf("error kind is %s, want %s", videoErr.Kind, KindRequestFailed)
		}
		if videoErr.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("status code is %d, want 503", videoErr.StatusCode)
		}
	})

	t.Run("2xx passes the body through", func(t *testing.T) {
		resp := &httpclient.Response{StatusCode: http.StatusOK, Body: []byte("payload")}

		body, err := checkResponse("video000001", resp, nil)
		if err != nil {
			t.Fatalf("checkResponse returned error %v, want nil", err)
		}
		if string(body) != "payload" {
			t.Fatalf("body is %q, want payload", body)
		}
	})
}
