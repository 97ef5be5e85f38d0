package solr_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/searchmeter/searchmeter/internal/solr"
)

func TestClientExecute(t *testing.T) {
	var gotQuery, gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotFilter = r.URL.Query().Get("fq")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseHeader":{"status":0,"QTime":5},"response":{"numFound":7,"docs":[]}}`))
	}))
	defer server.Close()

	client, err := solr.NewClient(server.URL+"/solr/select", 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	resp, err := client.Execute(context.Background(), solr.Query{
		Query:       "ipod",
		FilterQuery: "inStock:true",
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if gotQuery != "ipod" || gotFilter != "inStock:true" {
		t.Fatalf("query params not sent: q=%q fq=%q", gotQuery, gotFilter)
	}
	if resp.NumFound != 7 || resp.QTimeMillis != 5 {
		t.Fatalf("response not parsed: %+v", resp)
	}
}

func TestClientExecuteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "undefined field bogus", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := solr.NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Execute(context.Background(), solr.Query{Query: "bogus:x"})
	var httpErr *solr.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", httpErr.StatusCode)
	}
}

func TestClientExecuteCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := solr.NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := client.Execute(ctx, solr.Query{Query: "slow"}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestClientConcurrentFirstUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := solr.NewClient(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Execute(context.Background(), solr.Query{Query: "x"}); err != nil {
				t.Errorf("execute failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestClientPreservesExistingQueryString(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := solr.NewClient(server.URL+"/select?shards=a,b", 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Execute(context.Background(), solr.Query{Query: "x"}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if rawQuery == "" || rawQuery[:9] != "shards=a," {
		t.Fatalf("existing query string lost: %q", rawQuery)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := solr.NewClient("   ", time.Second); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}
