package quotes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/quotegen/internal/fetch"
)

type fakeFetcher struct {
	calls int
	body  string
	err   error
}

func (f *fakeFetcher) Get(_ context.Context, _ string) ([]byte, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte(f.body), "text/html", nil
}

const wikiPage = `<html><body><div class="mw-parser-output"><ul>
<li>Stay hungry, stay foolish, and never let the noise drown your inner voice. [1]</li>
<li>Interview with Playboy magazine, February 1985, conducted by David Sheff</li>
</ul></div></body></html>`

func TestLoad_ExtractsAndMemoizes(t *testing.T) {
	f := &fakeFetcher{body: wikiPage}
	s := NewSource(f, nil)
	for i := 0; i < 3; i++ {
		got, err := s.Load(context.Background(), "https://en.wikiquote.org/wiki/Steve_Jobs")
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		want := []string{"Stay hungry, stay foolish, and never let the noise drown your inner voice."}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("quotes mismatch (-want +got):\n%s", diff)
		}
	}
	if f.calls != 1 {
		t.Fatalf("expected a single fetch, got %d", f.calls)
	}
}

func TestLoad_FailureIsTypedAndNotMemoized(t *testing.T) {
	cause := errors.New("connection refused")
	f := &fakeFetcher{err: cause}
	s := NewSource(f, nil)
	_, err := s.Load(context.Background(), "https://en.wikiquote.org/wiki/X")
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrFetchFailed wrapping cause, got %v", err)
	}
	f.err = nil
	f.body = wikiPage
	if _, err := s.Load(context.Background(), "https://en.wikiquote.org/wiki/X"); err != nil {
		t.Fatalf("second load should refetch and succeed: %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("expected 2 fetches, got %d", f.calls)
	}
}

func TestLoad_MissingRegionIsEmptyNotFailure(t *testing.T) {
	s := NewSource(&fakeFetcher{body: "<html><body><p>nothing</p></body></html>"}, nil)
	got, err := s.Load(context.Background(), "https://en.wikiquote.org/wiki/Empty")
	if err != nil {
		t.Fatalf("missing region must not be a failure: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no quotes, got %q", got)
	}
}

func TestLoad_WithHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/Steve_Jobs" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write([]byte(wikiPage))
	}))
	defer srv.Close()

	s := NewSource(&fetch.Client{PerRequestTimeout: 2 * time.Second}, nil)
	got, err := s.Load(context.Background(), srv.URL+"/wiki/Steve_Jobs")
	if err != nil || len(got) != 1 {
		t.Fatalf("load: %q %v", got, err)
	}
	if _, err := s.Load(context.Background(), srv.URL+"/wiki/Broken"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed for 500, got %v", err)
	}
}
