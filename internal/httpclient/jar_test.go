package httpclient

import "testing"

func TestCookieJarSet(t *testing.T) {
	jar := &CookieJar{}
	jar.Set("CONSENT", "PENDING", ".youtube.com")
	jar.Set("CONSENT", "YES+abc", ".youtube.com")
	jar.Set("CONSENT", "OTHER", "example.com")

	if got := jar.Header("www.youtube.com"); got != "CONSENT=YES+abc" {
		t.Fatalf("Header returned %q, want the upserted value", got)
	}
}

func TestCookieJarHeader(t *testing.T) {
	jar := &CookieJar{}
	jar.Set("a", "1", ".youtube.com")
	jar.Set("b", "2", "consent.youtube.com")
	jar.Set("c", "3", "example.com")

	tests := []struct {
		host string
		want string
	}{
		{"www.youtube.com", "a=1"},
		{"youtube.com", "a=1"},
		{"consent.youtube.com", "a=1; b=2"},
		{"example.com", "c=3"},
		{"notyoutube.com", ""},
		{"youtube.com.evil.test", ""},
	}

	for _, tt := range tests {
		if got := jar.Header(tt.host); got != tt.want {
			t.Fatalf("Header(%s) returned %q, want %q", tt.host, got, tt.want)
		}
	}
}
