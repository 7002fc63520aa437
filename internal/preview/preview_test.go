package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

const productPage = `<!DOCTYPE html>
<html>
<head><title>UltraWidget 3000 - Example Shop</title></head>
<body>
<article>
<h1>UltraWidget 3000</h1>
<p>The UltraWidget 3000 trims an hour off your morning routine with a
single charge, and it fits in a jacket pocket. Reviewers keep coming back
to the build quality and the surprisingly quiet motor.</p>
</article>
</body>
</html>`

func TestFetchExtractsTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	p, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title == "" {
		t.Error("expected a non-empty title")
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("ü", maxExcerpt+40)
	got := truncate(long, maxExcerpt)

	if !utf8.ValidString(got) {
		t.Error("expected truncated excerpt to stay valid UTF-8")
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-8:])
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n != maxExcerpt {
		t.Errorf("expected %d runes before the ellipsis, got %d", maxExcerpt, n)
	}

	short := "Ünchanged"
	if got := truncate(short, maxExcerpt); got != short {
		t.Errorf("expected short text untouched, got %q", got)
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 403 response")
	}
}
