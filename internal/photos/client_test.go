package photos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), 2).WithBaseURL(srv.URL)
}

func TestListPaginatesUntilNoToken(t *testing.T) {
	pages := map[string]listResponse{
		"": {
			MediaItems:    []MediaItem{{ID: "a"}, {ID: "b"}},
			NextPageToken: "page2",
		},
		"page2": {
			MediaItems:    []MediaItem{{ID: "c"}, {ID: "d"}},
			NextPageToken: "page3",
		},
		"page3": {
			MediaItems: []MediaItem{{ID: "e"}},
		},
	}

	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/mediaItems" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		page, ok := pages[r.URL.Query().Get("pageToken")]
		if !ok {
			t.Fatalf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
		if err := json.NewEncoder(w).Encode(page); err != nil {
			t.Fatal(err)
		}
	}))

	items, err := client.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if requests != 3 {
		t.Errorf("expected 3 page requests, got %d", requests)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("item %d: got %q, want %q (order must follow the API)", i, items[i].ID, id)
		}
	}
}

func TestListRespectsMax(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always report another page; the cap has to stop the loop.
		resp := listResponse{
			MediaItems:    []MediaItem{{ID: "x"}, {ID: "y"}},
			NextPageToken: "more",
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatal(err)
		}
	}))

	items, err := client.List(context.Background(), 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected list capped at 3 items, got %d", len(items))
	}
}

func TestGet(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mediaItems/item-1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		item := MediaItem{
			ID:       "item-1",
			Filename: "trip.jpg",
			MimeType: "image/jpeg",
			MediaMetadata: MediaMetadata{
				CreationTime: "2024-06-01T12:00:00Z",
				Width:        "4032",
				Height:       "3024",
			},
		}
		if err := json.NewEncoder(w).Encode(item); err != nil {
			t.Fatal(err)
		}
	}))

	item, err := client.Get(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item.Filename != "trip.jpg" || item.MediaMetadata.Width != "4032" {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestGetNonOKStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"Media item not found"}}`, http.StatusNotFound)
	}))

	_, err := client.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if want := "status 404"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should mention %q", err, want)
	}
}

func TestUploadAndBatchCreate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uploads":
			if got := r.Header.Get("X-Goog-Upload-Protocol"); got != "raw" {
				t.Errorf("upload protocol header = %q, want raw", got)
			}
			if got := r.Header.Get("X-Goog-Upload-Content-Type"); got != "image/png" {
				t.Errorf("upload content type header = %q, want image/png", got)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != "png-bytes" {
				t.Errorf("unexpected upload body %q", body)
			}
			fmt.Fprint(w, "upload-token-1")
		case "/mediaItems:batchCreate":
			var req batchCreateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatal(err)
			}
			if len(req.NewMediaItems) != 1 {
				t.Fatalf("expected 1 new media item, got %d", len(req.NewMediaItems))
			}
			if req.NewMediaItems[0].SimpleMediaItem.UploadToken != "upload-token-1" {
				t.Errorf("batch create did not reference the upload token: %+v", req.NewMediaItems[0])
			}
			resp := batchCreateResponse{
				NewMediaItemResults: []CreateResult{{
					UploadToken: "upload-token-1",
					MediaItem:   &MediaItem{ID: "created-1", Filename: "shot.png"},
				}},
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				t.Fatal(err)
			}
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))

	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	token, err := client.UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if token != "upload-token-1" {
		t.Errorf("unexpected upload token %q", token)
	}

	results, err := client.BatchCreate(context.Background(), []NewMediaItem{
		NewMediaItemForFile(path, token, "test shot"),
	})
	if err != nil {
		t.Fatalf("BatchCreate failed: %v", err)
	}
	if len(results) != 1 || !results[0].OK() || results[0].MediaItem.ID != "created-1" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestUploadEmptyToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "  \n")
	}))

	path := filepath.Join(t.TempDir(), "x.jpg")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := client.UploadFile(context.Background(), path); err == nil {
		t.Error("expected error for empty upload token response")
	}
}

func TestBatchCreateRequiresItems(t *testing.T) {
	client := NewClient(http.DefaultClient, 10)
	if _, err := client.BatchCreate(context.Background(), nil); err == nil {
		t.Error("expected error for empty batch")
	}
}
