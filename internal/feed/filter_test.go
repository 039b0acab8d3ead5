package feed

import (
	"strings"
	"testing"
	"time"

	"archives/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func samplePosts() []*models.Post {
	return []*models.Post{
		{ID: 1, Type: models.PostTypePoetry, Title: "Rain", Content: "Grey skies", IsPinned: true, Status: models.PostStatusPublished, CreatedAt: base},
		{ID: 2, Type: models.PostTypeTech, Title: "System_Init", Content: "Booting the archive", Status: models.PostStatusPublished, CreatedAt: base.Add(-time.Hour)},
		{ID: 3, Type: models.PostTypeDiary, Title: "Hidden", Content: "Only for the vault", IsLocked: true, IsPinned: true, Status: models.PostStatusPublished, CreatedAt: base.Add(-2 * time.Hour)},
		{ID: 4, Type: models.PostTypePoetry, Title: "Draft verse", Content: "unfinished RAIN", Status: models.PostStatusDraft, CreatedAt: base.Add(-3 * time.Hour)},
	}
}

func ids(posts []*models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_Tags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want []uint
	}{
		{TagHome, []uint{1}},
		{TagAll, []uint{1, 2, 4}},
		{TagLocked, []uint{3}},
		{models.PostTypePoetry, []uint{1, 4}},
		{models.PostTypeDiary, []uint{3}},
		{"Confession", []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(Filter(samplePosts(), tt.tag, "")))
		})
	}
}

func TestFilter_HomeScenario(t *testing.T) {
	t.Parallel()
	posts := []*models.Post{
		{ID: 1, Type: models.PostTypePoetry, IsPinned: true},
		{ID: 2, Type: models.PostTypeTech},
	}
	assert.Equal(t, []uint{1}, ids(Filter(posts, TagHome, "")))
}

func TestFilter_LockedWithNoneIsEmptyNotNil(t *testing.T) {
	t.Parallel()
	posts := []*models.Post{{ID: 1, Type: models.PostTypeTech}}
	got := Filter(posts, TagLocked, "")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_QueryIsCaseInsensitiveSubsetOfTag(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{TagHome, TagAll, TagLocked, models.PostTypePoetry} {
		for _, q := range []string{"rain", "RAIN", "vault", "archive", "zzz"} {
			unfiltered := Filter(samplePosts(), tag, "")
			filtered := Filter(samplePosts(), tag, q)

			assert.Subset(t, ids(unfiltered), ids(filtered), "tag=%s q=%s", tag, q)
			for _, p := range filtered {
				hay := strings.ToLower(p.Title + "\n" + p.Content)
				assert.Contains(t, hay, strings.ToLower(q))
			}
		}
	}
}

func TestFilter_QueryMatchesTitleOrContent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []uint{1, 4}, ids(Filter(samplePosts(), TagAll, "rain")))
	assert.Equal(t, []uint{2}, ids(Filter(samplePosts(), TagAll, "booting")))
	assert.Equal(t, []uint{1, 2, 4}, ids(Filter(samplePosts(), TagAll, "   ")))
}

func TestFilter_PreservesOrder(t *testing.T) {
	t.Parallel()
	posts := samplePosts()
	posts[0], posts[1] = posts[1], posts[0]
	assert.Equal(t, []uint{2, 1, 4}, ids(Filter(posts, TagAll, "")))
}

func TestSort(t *testing.T) {
	t.Parallel()
	posts := []*models.Post{
		{ID: 1, CreatedAt: base.Add(-time.Hour)},
		{ID: 2, IsPinned: true, CreatedAt: base.Add(-48 * time.Hour)},
		{ID: 3, CreatedAt: base},
		{ID: 4, IsPinned: true, CreatedAt: base},
		{ID: 5, CreatedAt: base},
	}
	Sort(posts)
	assert.Equal(t, []uint{4, 2, 5, 3, 1}, ids(posts))
}

func TestVisible_DraftsOnlyForAdmins(t *testing.T) {
	t.Parallel()
	for _, tag := range []string{TagHome, TagAll, TagLocked, models.PostTypePoetry} {
		for _, p := range Filter(Visible(samplePosts(), false), tag, "") {
			assert.True(t, p.IsPublished(), "draft %d leaked under %s", p.ID, tag)
		}
	}
	assert.Len(t, Visible(samplePosts(), true), 4)
}

func TestParseTag(t *testing.T) {
	t.Parallel()
	assert.Equal(t, TagHome, ParseTag(""))
	assert.Equal(t, TagHome, ParseTag("  "))
	assert.Equal(t, TagLocked, ParseTag("locked"))
	assert.Equal(t, models.PostTypeBookReview, ParseTag("book review"))
	assert.Equal(t, "Haiku", ParseTag(" Haiku "))
}
