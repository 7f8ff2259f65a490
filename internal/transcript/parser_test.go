package transcript

import "testing"

func TestParseSnippets(t *testing.T) {
	doc := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="1.5" dur="2.0">A &amp; B</text>
  <text start="3.5" dur="1.25">second &#39;line&#39;</text>
  <text>no timing</text>
</transcript>`)

	snippets := parseSnippets(doc, false)
	if len(snippets) != 3 {
		t.Fatalf("parseSnippets returned %d snippets, want 3", len(snippets))
	}

	first := snippets[0]
	if first.Text != "A & B" || first.Start != 1.5 || first.Duration != 2.0 {
		t.Fatalf("first snippet is %+v, want {A & B 1.5 2}", first)
	}

	if snippets[1].Text != "second 'line'" {
		t.Fatalf("second snippet text is %q, want decoded entities", snippets[1].Text)
	}

	third := snippets[2]
	if third.Start != 0 || third.Duration != 0 {
		t.Fatalf("snippet without timing is %+v, want zero start and duration", third)
	}
}

func TestParseSnippetsFormatting(t *testing.T) {
	doc := []byte(`<transcript><text start="0" dur="1">a &lt;i&gt;styled&lt;/i&gt; &lt;font color="red"&gt;word&lt;/font&gt;</text></transcript>`)

	t.Run("stripped", func(t *testing.T) {
		snippets := parseSnippets(doc, false)
		if len(snippets) != 1 {
			t.Fatalf("parseSnippets returned %d snippets, want 1", len(snippets))
		}
		if snippets[0].Text != "a styled word" {
			t.Fatalf("stripped text is %q, want all tags removed", snippets[0].Text)
		}
	})

	t.Run("preserved", func(t *testing.T) {
		snippets := parseSnippets(doc, true)
		if len(snippets) != 1 {
			t.Fatalf("parseSnippets returned %d snippets, want 1", len(snippets))
		}
		if snippets[0].Text != `a <i>styled</i> word` {
			t.Fatalf("preserved text is %q, want only formatting tags kept", snippets[0].Text)
		}
	})
}

func TestParseSnippetsEmptyDocument(t *testing.T) {
	if snippets := parseSnippets([]byte("<transcript></transcript>"), false); len(snippets) != 0 {
		t.Fatalf("parseSnippets returned %d snippets, want 0", len(snippets))
	}
}

func TestParseSnippetsMultiline(t *testing.T) {
	doc := []byte("<transcript><text start=\"0\" dur=\"1\">line one\nline two</text></transcript>")

	snippets := parseSnippets(doc, false)
	if len(snippets) != 1 {
		t.Fatalf("parseSnippets returned %d snippets, want 1", len(snippets))
	}
	if snippets[0].Text != "line one\nline two" {
		t.Fatalf("snippet text is %q, want the newline preserved", snippets[0].Text)
	}
}
