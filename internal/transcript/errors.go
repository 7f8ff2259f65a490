package transcript

import (
	"fmt"
	"strings"
)

// ErrorKind discriminates the transcript error family. The message text is a
// pure formatting function over the variant; no kind carries state beyond
// the payload fields on VideoError.
type ErrorKind string

const (
	// Retryable, block-related.
	KindRequestBlocked ErrorKind = "request_blocked"
	KindIPBlocked      ErrorKind = "ip_blocked"

	// Terminal content states.
	KindVideoUnavailable       ErrorKind = "video_unavailable"
	KindInvalidVideoID         ErrorKind = "invalid_video_id"
	KindAgeRestricted          ErrorKind = "age_restricted"
	KindTranscriptsDisabled    ErrorKind = "transcripts_disabled"
	KindVideoUnplayable        ErrorKind = "video_unplayable"
	KindNoTranscriptFound      ErrorKind = "no_transcript_found"
	KindNotTranslatable        ErrorKind = "not_translatable"
	KindTranslationUnavailable ErrorKind = "translation_language_not_available"
	KindPoTokenRequired        ErrorKind = "po_token_required"

	// Terminal protocol/parse failures.
	KindDataUnparsable      ErrorKind = "youtube_data_unparsable"
	KindRequestFailed       ErrorKind = "youtube_request_failed"
	KindConsentCookieFailed ErrorKind = "failed_to_create_consent_cookie"
)

// VideoError is the single error family for the transcript side. Every value
// carries the video id; the remaining payload fields depend on the kind.
type VideoError struct {
	Kind    ErrorKind
	VideoID string

	Reason     string
	SubReasons []string

	RequestedLanguages []string
	Catalog            string

	StatusCode int

	// ProxyKind annotates a block error after the retry budget is spent so
	// the remediation hint matches the active proxy configuration.
	ProxyKind string
}

func (e *VideoError) Retryable() bool {
	return e.Kind == KindRequestBlocked || e.Kind == KindIPBlocked
}

func (e *VideoError) Error() string {
	base := fmt.Sprintf("could not retrieve a transcript for video %s: ", e.VideoID)

	switch e.Kind {
	case KindRequestBlocked, KindIPBlocked:
		return base + "YouTube is blocking requests from your IP" + e.blockHint()
	case KindVideoUnavailable:
		return base + "the video is no longer available"
	case KindInvalidVideoID:
		return base + "the id looks like a URL; pass the plain 11-character video id instead"
	case KindAgeRestricted:
		return base + "the video is age restricted and cannot be accessed without authentication"
	case KindTranscriptsDisabled:
		return base + "subtitles are disabled for this video"
	case KindVideoUnplayable:
		msg := base + "the video is unplayable"
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		if len(e.SubReasons) > 0 {
			msg += " (" + strings.Join(e.SubReasons, "; ") + ")"
		}
		return msg
	case KindNoTranscriptFound:
		msg := base + fmt.Sprintf("no transcripts were found for any of the requested language codes %v", e.RequestedLanguages)
		if e.Catalog != "" {
			msg += "\n" + e.Catalog
		}
		return msg
	case KindNotTranslatable:
		return base + "the requested transcript cannot be translated"
	case KindTranslationUnavailable:
		return base + fmt.Sprintf("the transcript cannot be translated to %v", e.RequestedLanguages)
	case KindPoTokenRequired:
		return base + "the caption track requires a proof-of-origin token and can only be fetched by a browser"
	case KindDataUnparsable:
		return base + "the YouTube page layout changed and could not be parsed"
	case KindRequestFailed:
		if e.Reason != "" {
			return base + "request to YouTube failed: " + e.Reason
		}
		return base + fmt.Sprintf("request to YouTube failed with status code %d", e.StatusCode)
	case KindConsentCookieFailed:
		return base + "failed to automatically give consent to saving cookies"
	default:
		return base + string(e.Kind)
	}
}

func (e *VideoError) blockHint() string {
	switch e.ProxyKind {
	case "":
		return "; route requests through a proxy pool to work around the ban"
	case "static list":
		return "; all proxies in the static list appear to be blocked, swap in fresh addresses"
	default:
		return "; the current " + e.ProxyKind + " proxies are blocked, a later rotation may succeed"
	}
}
