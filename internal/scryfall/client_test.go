package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSearchSendsQueryVerbatim(t *testing.T) {
	var gotQuery, gotOrder, gotPath, gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotOrder = r.URL.Query().Get("order")
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","total_cards":1,"has_more":false,"data":[{"id":"abc","name":"Lightning Bolt","scryfall_uri":"https://scryfall.com/card/lea/161","image_uris":{"small":"https://img/small.jpg","png":"https://img/card.png"}}]}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client(), UserAgent: "scryinline-test"}

	list, err := client.Search(context.Background(), "t:instant  o:\"deals 3\" & more")
	require.NoError(t, err)
	require.Equal(t, "/cards/search", gotPath)
	require.Equal(t, "t:instant  o:\"deals 3\" & more", gotQuery)
	require.Equal(t, DefaultOrder, gotOrder)
	require.Equal(t, "scryinline-test", gotUA)
	require.Equal(t, "application/json", gotAccept)

	require.Len(t, list.Data, 1)
	require.Equal(t, "Lightning Bolt", list.Data[0].Name)
	require.Equal(t, "https://scryfall.com/card/lea/161", list.Data[0].ScryfallURI)
	require.Equal(t, "https://img/small.jpg", list.Data[0].ImageURIs.Small)
}

func TestSearchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"Your query didn't match any cards."}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := client.Search(context.Background(), "zzzzzz")
	require.Error(t, err)
	require.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "not_found", apiErr.Code)
	require.Contains(t, apiErr.Error(), "didn't match")
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := client.Search(context.Background(), "bolt")
	require.Error(t, err)
	require.False(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestSearchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object":"list","data":[`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := client.Search(context.Background(), "bolt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode scryfall response")
}

func TestSearchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client(), Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := client.Search(context.Background(), "bolt")
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestCardImagesFallsBackToFirstFace(t *testing.T) {
	card := Card{
		Name: "Delver of Secrets // Insectile Aberration",
		CardFaces: []CardFace{
			{Name: "Delver of Secrets", ImageURIs: &ImageURIs{Small: "front-small", PNG: "front-png"}},
			{Name: "Insectile Aberration", ImageURIs: &ImageURIs{Small: "back-small", PNG: "back-png"}},
		},
	}

	images, ok := card.Images()
	require.True(t, ok)
	require.Equal(t, "front-small", images.Small)

	_, ok = Card{Name: "No Image"}.Images()
	require.False(t, ok)
}

func TestCheckHealth(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNotFound)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"object":"error","code":"not_found","status":404}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}
	require.NoError(t, client.CheckHealth(context.Background()))

	status.Store(http.StatusBadGateway)
	require.Error(t, client.CheckHealth(context.Background()))
}
