package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/source"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		if q.Get("offset") == "2" {
			fmt.Fprint(w, `{"count":2,"next":null,"results":[]}`)
			return
		}
		fmt.Fprintf(w, `{"count":2,"next":"http://x/pokemon?offset=2&limit=%s","results":[{"name":"bulbasaur"},{"name":"ivysaur"}]}`, q.Get("limit"))
	})
	mux.HandleFunc("/pokemon/bulbasaur", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":1,"name":"bulbasaur","height":7,"weight":69,
			"sprites":{"front_default":"http://img/1.png","other":{"official-artwork":{"front_default":"http://img/1-art.png"}}},
			"types":[{"slot":1,"type":{"name":"grass"}},{"slot":2,"type":{"name":"poison"}}]}`)
	})
	mux.HandleFunc("/pokemon/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":0,"name":""}`)
	})
	mux.HandleFunc("/pokemon/garbage", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, `not json`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAdapter_ListPage(t *testing.T) {
	srv := newTestServer(t)
	a := NewAdapter(&Config{BaseURL: srv.URL + "/"})

	page, err := a.ListPage(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "bulbasaur", page.Results[0].Name)
	assert.True(t, page.HasNext())

	last, err := a.ListPage(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Empty(t, last.Results)
	assert.False(t, last.HasNext())
}

func TestAdapter_Detail(t *testing.T) {
	srv := newTestServer(t)
	a := NewAdapter(&Config{BaseURL: srv.URL})

	d, err := a.Detail(context.Background(), "bulbasaur")
	require.NoError(t, err)
	item := source.ToListItem(d)
	assert.Equal(t, 1, item.ID)
	assert.Equal(t, "http://img/1.png", item.ThumbnailImage)
	assert.Equal(t, "http://img/1-art.png", item.PreviewImage)
	assert.Equal(t, []string{"grass", "poison"}, item.Categories)
}

func TestAdapter_DetailErrors(t *testing.T) {
	srv := newTestServer(t)
	a := NewAdapter(&Config{BaseURL: srv.URL})

	tests := []struct {
		name   string
		target string
		want   error
	}{
		{name: "not found", target: "missingno", want: domain.ErrItemNotFound},
		{name: "missing fields", target: "broken", want: domain.ErrMalformedResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Detail(context.Background(), tc.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	t.Run("undecodable body", func(t *testing.T) {
		_, err := a.Detail(context.Background(), "garbage")
		assert.Error(t, err)
	})
}
