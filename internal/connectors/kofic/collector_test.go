package kofic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keaunsolNa/knock-crawling/internal/connectors/ratelimit"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

const listPage1 = `{"movieListResult":{"totCnt":3,"movieList":[
 {"movieCd":"20241002","movieNm":" 파묘 ","openDt":"20240222","genreAlt":"미스터리,공포(호러)",
  "directors":[{"peopleNm":"장재현"}],"companys":[{"companyCd":"1","companyNm":"쇼박스"}]},
 {"movieCd":"20241001","movieNm":"듄: 파트2","openDt":"","genreAlt":"",
  "directors":[],"companys":[]}
]}}`

const listPage2 = `{"movieListResult":{"totCnt":3,"movieList":[
 {"movieCd":"20230999","movieNm":"서울의 봄","openDt":"2023-11-22","genreAlt":"드라마",
  "directors":[{"peopleNm":"김성수"}],"companys":[]}
]}}`

const detail = `{"movieInfoResult":{"movieInfo":{"movieCd":"20241002","showTm":"134",
 "actors":[{"peopleNm":"최민식"},{"peopleNm":" 김고은 "},{"peopleNm":""}],
 "directors":[{"peopleNm":"장재현"}],
 "genres":[{"genreNm":"미스터리"}]}}}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "2", r.URL.Query().Get("itemPerPage"))
		assert.Equal(t, "2023", r.URL.Query().Get("openStartDt"))
		switch r.URL.Query().Get("curPage") {
		case "1":
			_, _ = w.Write([]byte(listPage1))
		case "2":
			_, _ = w.Write([]byte(listPage2))
		default:
			_, _ = w.Write([]byte(`{"movieListResult":{"totCnt":3,"movieList":[]}}`))
		}
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("movieCd") != "20241002" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(detail))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newCollector(server *httptest.Server) *Collector {
	client := ratelimit.NewClient(ratelimit.New(ratelimit.Config{RequestsPerSecond: 1000, Burst: 100}), nil)
	return New(domain.KOFICSettings{
		Enabled:       true,
		ListURL:       server.URL + "/list",
		DetailURL:     server.URL + "/detail",
		APIKey:        "test-key",
		PageSize:      2,
		OpenStartYear: "2023",
	}, client)
}

func TestCollector_Metadata(t *testing.T) {
	c := New(domain.KOFICSettings{}, nil)

	assert.Equal(t, domain.SourceKOFIC, c.Name())
	assert.Equal(t, domain.DomainMovie, c.Domain())
	assert.Equal(t, domain.NoSlot, c.ReservationSlot())
	assert.Equal(t, DefaultPageSize, c.PageSize())
}

func TestCollector_FetchPage(t *testing.T) {
	c := newCollector(newServer(t))

	page, err := c.FetchPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2", page.Next)
	assert.False(t, page.Done)

	first := page.Items[0]
	assert.Equal(t, domain.SourceKOFIC, first.SourceID)
	assert.Equal(t, "20241002", first.Code)
	assert.Equal(t, "파묘", first.Title)
	assert.Equal(t, int64(1708560000000), first.OpeningTime)
	assert.Equal(t, []string{"장재현"}, first.Directors)
	assert.Equal(t, []string{"쇼박스"}, first.Companies)
	assert.Equal(t, []string{"미스터리", "공포(호러)"}, first.Categories)
	assert.Equal(t, "20241002", first.DetailRef)
	assert.Equal(t, int64(20241002), first.Recency)

	second := page.Items[1]
	assert.Zero(t, second.OpeningTime)
	assert.Empty(t, second.Categories)

	page, err = c.FetchPage(context.Background(), page.Next)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Done, "totCnt reached")
	assert.Equal(t, int64(1700611200000), page.Items[0].OpeningTime)
}

func TestCollector_FetchPage_InvalidCursor(t *testing.T) {
	c := newCollector(newServer(t))

	_, err := c.FetchPage(context.Background(), "zero")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCollector_FetchPage_Fault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"faultInfo":{"message":"유효하지않은 키값입니다.","errorCode":"320010"}}`))
	}))
	defer server.Close()

	_, err := newCollector(server).FetchPage(context.Background(), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "320010")
}

func TestCollector_FetchPage_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	_, err := newCollector(server).FetchPage(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestCollector_Detail(t *testing.T) {
	c := newCollector(newServer(t))
	page, err := c.FetchPage(context.Background(), "")
	require.NoError(t, err)

	rec, err := c.Detail(context.Background(), page.Items[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"최민식", "김고은"}, rec.Cast)
	assert.Equal(t, 134, rec.RunningTime)
	assert.Equal(t, []string{"미스터리", "공포(호러)"}, rec.Categories, "listing genres are kept")
}

func TestCollector_Detail_FillsMissingGenres(t *testing.T) {
	c := newCollector(newServer(t))

	rec, err := c.Detail(context.Background(), domain.SourceRecord{Code: "20241002", DetailRef: "20241002"})
	require.NoError(t, err)
	assert.Equal(t, []string{"미스터리"}, rec.Categories)
	assert.Equal(t, []string{"장재현"}, rec.Directors)
}

func TestCollector_Detail_Failure(t *testing.T) {
	c := newCollector(newServer(t))
	item := domain.SourceRecord{Title: "Unknown", DetailRef: "19990000"}

	rec, err := c.Detail(context.Background(), item)

	require.Error(t, err)
	assert.True(t, ratelimit.IsNotFound(err))
	assert.Equal(t, item, rec, "listing data is returned unchanged")
}

func TestCollector_Detail_NoRef(t *testing.T) {
	c := newCollector(newServer(t))
	item := domain.SourceRecord{Title: "No ref"}

	rec, err := c.Detail(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, item, rec)
}

func TestCollector_Close(t *testing.T) {
	c := newCollector(newServer(t))
	require.NoError(t, c.Close())

	_, err := c.FetchPage(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrCollectorClosed)
}
