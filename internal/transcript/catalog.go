package transcript

import (
	"context"
	"fmt"
	"strings"

	"tubetext/internal/httpclient"
)

type Snippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type TranslationLanguage struct {
	Language     string `json:"language"`
	LanguageCode string `json:"languageCode"`
}

// FetchedTranscript is realized caption content: the ordered snippets plus
// the language metadata of the track they came from.
type FetchedTranscript struct {
	Snippets     []Snippet `json:"snippets"`
	VideoID      string    `json:"videoId"`
	Language     string    `json:"language"`
	LanguageCode string    `json:"languageCode"`
	IsGenerated  bool      `json:"isGenerated"`
}

// Text joins the snippet bodies into one newline-separated block.
func (t *FetchedTranscript) Text() string {
	parts := make([]string, len(t.Snippets))
	for i, snippet := range t.Snippets {
		parts[i] = snippet.Text
	}
	return strings.Join(parts, "\n")
}

// SRT renders the snippets as a SubRip document.
func (t *FetchedTranscript) SRT() string {
	var b strings.Builder
	for i, snippet := range t.Snippets {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			srtTimestamp(snippet.Start),
			srtTimestamp(snippet.Start+snippet.Duration),
			snippet.Text)
	}
	return b.String()
}

func srtTimestamp(seconds float64) string {
	millis := int64(seconds * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d",
		millis/3600000,
		millis/60000%60,
		millis/1000%60,
		millis%1000)
}

// Transcript is one selectable caption track. Fetch is idempotent; the same
// track can be realized repeatedly.
type Transcript struct {
	client *httpclient.Client

	VideoID              string
	URL                  string
	Language             string
	LanguageCode         string
	IsGenerated          bool
	TranslationLanguages []TranslationLanguage
}

func (t *Transcript) IsTranslatable() bool {
	return len(t.TranslationLanguages) > 0
}

// Translate derives a track whose caption document is machine-translated to
// the given language code.
func (t *Transcript) Translate(languageCode string) (*Transcript, error) {
	if !t.IsTranslatable() {
		return nil, &VideoError{Kind: KindNotTranslatable, VideoID: t.VideoID}
	}

	for _, lang := range t.TranslationLanguages {
		if lang.LanguageCode == languageCode {
			return &Transcript{
				client:       t.client,
				VideoID:      t.VideoID,
				URL:          t.URL + "&tlang=" + languageCode,
				Language:     lang.Language,
				LanguageCode: languageCode,
				IsGenerated:  true,
			}, nil
		}
	}

	return nil, &VideoError{
		Kind:               KindTranslationUnavailable,
		VideoID:            t.VideoID,
		RequestedLanguages: []string{languageCode},
	}
}

// Fetch retrieves and parses the track's caption document.
func (t *Transcript) Fetch(ctx context.Context, preserveFormatting bool) (*FetchedTranscript, error) {
	if strings.Contains(t.URL, poTokenMarker) {
		return nil, &VideoError{Kind: KindPoTokenRequired, VideoID: t.VideoID}
	}

	resp, err := t.client.Get(ctx, t.URL, nil)
	body, err := checkResponse(t.VideoID, resp, err)
	if err != nil {
		return nil, err
	}

	return &FetchedTranscript{
		Snippets:     parseSnippets(body, preserveFormatting),
		VideoID:      t.VideoID,
		Language:     t.Language,
		LanguageCode: t.LanguageCode,
		IsGenerated:  t.IsGenerated,
	}, nil
}

// TranscriptList is the catalog of caption tracks for one video: manually
// created tracks, auto-generated ("asr") tracks and the translation targets
// the video offers.
type TranscriptList struct {
	VideoID              string
	TranslationLanguages []TranslationLanguage

	manual          []*Transcript
	generated       []*Transcript
	manualByCode    map[string]*Transcript
	generatedByCode map[string]*Transcript
}

// FindTranscript selects a track, searching manual tracks before generated
// ones for each requested language code in order.
func (l *TranscriptList) FindTranscript(languageCodes ...string) (*Transcript, error) {
	for _, code := range languageCodes {
		if t, ok := l.manualByCode[code]; ok {
			return t, nil
		}
		if t, ok := l.generatedByCode[code]; ok {
			return t, nil
		}
	}

	return nil, &VideoError{
		Kind:               KindNoTranscriptFound,
		VideoID:            l.VideoID,
		RequestedLanguages: languageCodes,
		Catalog:            l.String(),
	}
}

// FindManuallyCreatedTranscript restricts the search to human-authored tracks.
func (l *TranscriptList) FindManuallyCreatedTranscript(languageCodes ...string) (*Transcript, error) {
	return l.findIn(l.manualByCode, languageCodes)
}

// FindGeneratedTranscript restricts the search to auto-generated tracks.
func (l *TranscriptList) FindGeneratedTranscript(languageCodes ...string) (*Transcript, error) {
	return l.findIn(l.generatedByCode, languageCodes)
}

func (l *TranscriptList) findIn(byCode map[string]*Transcript, languageCodes []string) (*Transcript, error) {
	for _, code := range languageCodes {
		if t, ok := byCode[code]; ok {
			return t, nil
		}
	}
	return nil, &VideoError{
		Kind:               KindNoTranscriptFound,
		VideoID:            l.VideoID,
		RequestedLanguages: languageCodes,
		Catalog:            l.String(),
	}
}

// Transcripts returns every track in the catalog, manual tracks first.
func (l *TranscriptList) Transcripts() []*Transcript {
	all := make([]*Transcript, 0, len(l.manual)+len(l.generated))
	all = append(all, l.manual...)
	return append(all, l.generated...)
}

func (l *TranscriptList) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transcripts available for video %s:\n", l.VideoID)

	describe := func(header string, tracks []*Transcript) {
		fmt.Fprintf(&b, "(%s)\n", header)
		if len(tracks) == 0 {
			b.WriteString("  none\n")
			return
		}
		for _, t := range tracks {
			fmt.Fprintf(&b, "  %s (%q)", t.LanguageCode, t.Language)
			if t.IsTranslatable() {
				b.WriteString(" [translatable]")
			}
			b.WriteString("\n")
		}
	}

	describe("manually created", l.manual)
	describe("generated", l.generated)
	return b.String()
}

func newTranscriptList(client *httpclient.Client, videoID string, renderer *captionsRenderer) *TranscriptList {
	list := &TranscriptList{
		VideoID:         videoID,
		manualByCode:    make(map[string]*Transcript),
		generatedByCode: make(map[string]*Transcript),
	}

	for _, lang := range renderer.TranslationLanguages {
		list.TranslationLanguages = append(list.TranslationLanguages, TranslationLanguage{
			Language:     lang.LanguageName.String(),
			LanguageCode: lang.LanguageCode,
		})
	}

	for _, track := range renderer.CaptionTracks {
		t := &Transcript{
			client:       client,
			VideoID:      videoID,
			URL:          track.BaseURL,
			Language:     track.Name.String(),
			LanguageCode: track.LanguageCode,
			IsGenerated:  track.Kind == "asr",
		}
		if track.IsTranslatable {
			t.TranslationLanguages = list.TranslationLanguages
		}

		if t.IsGenerated {
			if _, exists := list.generatedByCode[t.LanguageCode]; !exists {
				list.generatedByCode[t.LanguageCode] = t
				list.generated = append(list.generated, t)
			}
		} else {
			if _, exists := list.manualByCode[t.LanguageCode]; !exists {
				list.manualByCode[t.LanguageCode] = t
				list.manual = append(list.manual, t)
			}
		}
	}

	return list
}
