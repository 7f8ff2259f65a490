package transcript

import (
	"strings"
	"testing"
)

func TestVideoErrorRetryable(t *testing.T) {
	retryable := []ErrorKind{KindRequestBlocked, KindIPBlocked}
	for _, kind := range retryable {
		err := &VideoError{Kind: kind, VideoID: "video000001"}
		if !err.Retryable() {
			t.Fatalf("Retryable returned false for %s", kind)
		}
	}

	terminal := []ErrorKind{
		KindVideoUnavailable, KindInvalidVideoID, KindAgeRestricted,
		KindTranscriptsDisabled, KindVideoUnplayable, KindNoTranscriptFound,
		KindPoTokenRequired, KindDataUnparsable, KindRequestFailed,
		KindConsentCookieFailed,
	}
	for _, kind := range terminal {
		err := &VideoError{Kind: kind, VideoID: "video000001"}
		if err.Retryable() {
			t.Fatalf("Retryable returned true for %s", kind)
		}
	}
}

func TestVideoErrorMessages(t *testing.T) {
	t.Run("every message names the video", func(t *testing.T) {
		kinds := []ErrorKind{
			KindRequestBlocked, KindIPBlocked, KindVideoUnavailable,
			KindInvalidVideoID, KindAgeRestricted, KindTranscriptsDisabled,
			KindVideoUnplayable, KindNoTranscriptFound, KindNotTranslatable,
			KindTranslationUnavailable, KindPoTokenRequired, KindDataUnparsable,
			KindRequestFailed, KindConsentCookieFailed,
		}
		for _, kind := range kinds {
			err := &VideoError{Kind: kind, VideoID: "video000001"}
			if !strings.Contains(err.Error(), "video000001") {
				t.Fatalf("%s message %q does not name the video", kind, err.Error())
			}
		}
	})

	t.Run("block hint tracks the proxy configuration", func(t *testing.T) {
		bare := &VideoError{Kind: KindIPBlocked, VideoID: "video000001"}
		if !strings.Contains(bare.Error(), "proxy pool") {
			t.Fatalf("unproxied block message %q does not suggest a pool", bare.Error())
		}

		static := &VideoError{Kind: KindIPBlocked, VideoID: "video000001", ProxyKind: "static list"}
		if !strings.Contains(static.Error(), "static list") {
			t.Fatalf("static block message %q does not mention the static list", static.Error())
		}

		rotating := &VideoError{Kind: KindIPBlocked, VideoID: "video000001", ProxyKind: "rotating pool"}
		if !strings.Contains(rotating.Error(), "rotating pool") {
			t.Fatalf("rotating block message %q does not mention the pool", rotating.Error())
		}
	})

	t.Run("unplayable carries reason and subreasons", func(t *testing.T) {
		err := &VideoError{
			Kind:       KindVideoUnplayable,
			VideoID:    "video000001",
			Reason:     "Video blocked",
			SubReasons: []string{"Blocked in your country"},
		}
		msg := err.Error()
		if !strings.Contains(msg, "Video blocked") || !strings.Contains(msg, "Blocked in your country") {
			t.Fatalf("unplayable message %q is missing reason details", msg)
		}
	})

	t.Run("request failed formats", func(t *testing.T) {
		withStatus := &VideoError{Kind: KindRequestFailed, VideoID: "video000001", StatusCode: 503}
		if !strings.Contains(withStatus.Error(), "503") {
			t.Fatalf("request failure message %q does not carry the status", withStatus.Error())
		}

		withReason := &VideoError{Kind: KindRequestFailed, VideoID: "video000001", Reason: "dial tcp: refused"}
		if !strings.Contains(withReason.Error(), "dial tcp: refused") {
			t.Fatalf("request failure message %q does not carry the reason", withReason.Error())
		}
	})
}
