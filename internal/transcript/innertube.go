package transcript

import "regexp"

// YouTube scrape constants. The innertube key is embedded in the watch page;
// the catalog comes from the internal player API using a fixed client
// context.
const (
	watchPageURL    = "https://www.youtube.com/watch?v="
	innertubeAPIURL = "https://www.youtube.com/youtubei/v1/player?key="

	innertubeClientName    = "ANDROID"
	innertubeClientVersion = "20.10.38"

	consentFormMarker = `action="https://consent.youtube.com/s"`
	captchaMarker     = `class="g-recaptcha"`

	// Caption URLs carrying this marker need a proof-of-origin token and
	// cannot be fetched server-side.
	poTokenMarker = "&exp=xpe"
)

var (
	apiKeyRE       = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentValueRE = regexp.MustCompile(`name="v" value="(.*?)"`)
)

type innertubeRequest struct {
	Context innertubeContext `json:"context"`
	VideoID string           `json:"videoId"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

type playerResponse struct {
	PlayabilityStatus *playabilityStatus `json:"playabilityStatus"`
	Captions          *struct {
		Renderer *captionsRenderer `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type playabilityStatus struct {
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	ErrorScreen *struct {
		PlayerErrorMessageRenderer *struct {
			Subreason *textValue `json:"subreason"`
		} `json:"playerErrorMessageRenderer"`
	} `json:"errorScreen"`
}

type captionsRenderer struct {
	CaptionTracks        []captionTrack        `json:"captionTracks"`
	TranslationLanguages []translationLanguage `json:"translationLanguages"`
}

type captionTrack struct {
	BaseURL        string    `json:"baseUrl"`
	Name           textValue `json:"name"`
	LanguageCode   string    `json:"languageCode"`
	Kind           string    `json:"kind"` // "asr" marks auto-generated tracks
	IsTranslatable bool      `json:"isTranslatable"`
}

type translationLanguage struct {
	LanguageCode string    `json:"languageCode"`
	LanguageName textValue `json:"languageName"`
}

// textValue covers both text shapes the API emits: a plain simpleText or a
// list of runs.
type textValue struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (v textValue) String() string {
	if v.SimpleText != "" {
		return v.SimpleText
	}
	var out string
	for _, run := range v.Runs {
		out += run.Text
	}
	return out
}

func (v *textValue) subReasons() []string {
	if v == nil {
		return nil
	}
	if v.SimpleText != "" {
		return []string{v.SimpleText}
	}
	reasons := make([]string, 0, len(v.Runs))
	for _, run := range v.Runs {
		reasons = append(reasons, run.Text)
	}
	return reasons
}
