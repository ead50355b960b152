package news

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"XAUCopilot/internal/model"
)

type fakeSearcher struct {
	items     []model.NewsItem
	err       error
	gotMax    int
	gotLimit  string
	gotQuery  string
	callCount int
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int, timeLimit string) ([]model.NewsItem, error) {
	f.callCount++
	f.gotQuery, f.gotMax, f.gotLimit = query, maxResults, timeLimit
	return f.items, f.err
}

func TestAdapter_Search_PassesCapAndRecency(t *testing.T) {
	s := &fakeSearcher{}
	_, err := NewAdapter(s).Search(context.Background(), "gold price")
	require.NoError(t, err)
	assert.Equal(t, 1, s.callCount)
	assert.Equal(t, "gold price", s.gotQuery)
	assert.Equal(t, 3, s.gotMax)
	assert.Equal(t, "d", s.gotLimit)
}

func TestAdapter_Search_Placeholders(t *testing.T) {
	s := &fakeSearcher{items: []model.NewsItem{
		{Title: "Gold rallies", Date: "2025-02-03", Snippet: "Bullion rose"},
		{},
		{Title: "  ", Snippet: "Fed holds"},
		{Title: "dropped by cap"},
	}}
	items, err := NewAdapter(s).Search(context.Background(), "gold")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Gold rallies", items[0].Title)
	assert.Equal(t, model.NewsItem{Title: "No Title", Date: "Unknown Date", Snippet: "No snippet"}, items[1])
	assert.Equal(t, "No Title", items[2].Title)
	assert.Equal(t, "Fed holds", items[2].Snippet)
}

func TestAdapter_Search_Error(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewAdapter(&fakeSearcher{err: boom}).Search(context.Background(), "gold")
	assert.ErrorIs(t, err, boom)
}

func TestRender(t *testing.T) {
	out := Render([]model.NewsItem{
		{Title: "A", Date: "D1", Snippet: "S1"},
		{Title: "B", Date: "D2", Snippet: "S2"},
	})
	assert.Equal(t, "NEWS TITLE: A\nDATE: D1\nSNIPPET: S1\n---\nNEWS TITLE: B\nDATE: D2\nSNIPPET: S2\n---", out)
}

func TestRender_Empty(t *testing.T) {
	out := Render(nil)
	assert.Contains(t, out, "Assume Neutral")
	assert.False(t, strings.Contains(out, "NEWS TITLE"))
}
