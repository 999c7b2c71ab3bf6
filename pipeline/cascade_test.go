package pipeline_test

import (
	"context"
	"testing"

	"github.com/contentloop/enrich"
	"github.com/contentloop/enrich/mock"
	"github.com/contentloop/enrich/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSearcher(results ...enrich.SearchResult) *mock.Searcher {
	return &mock.Searcher{
		SearchFn: func(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
			return results, nil
		},
	}
}

func failingSearcher() *mock.Searcher {
	return &mock.Searcher{
		SearchFn: func(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
			return nil, enrich.Errorf(enrich.EUNAVAILABLE, "backend down")
		},
	}
}

func TestCascade_Search(t *testing.T) {
	t.Parallel()

	t.Run("stops at the first backend with results", func(t *testing.T) {
		t.Parallel()

		var secondCalled bool
		second := &mock.Searcher{
			SearchFn: func(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
				secondCalled = true
				return nil, nil
			},
		}

		c := pipeline.NewCascade(discardLogger(),
			staticSearcher(enrich.SearchResult{URL: "https://medium.com/a-reference-article", Title: "Ref"}),
			second,
		)

		results, err := c.Search(context.Background(), "topic")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.False(t, secondCalled)
	})

	t.Run("moves past empty and failing backends", func(t *testing.T) {
		t.Parallel()

		c := pipeline.NewCascade(discardLogger(),
			failingSearcher(),
			staticSearcher(), // empty, no error
			staticSearcher(enrich.SearchResult{URL: "https://hubspot.com/blog/the-reference", Title: "Ref"}),
		)

		results, err := c.Search(context.Background(), "topic")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "https://hubspot.com/blog/the-reference", results[0].URL)
	})

	t.Run("exhausted cascade returns empty without error", func(t *testing.T) {
		t.Parallel()

		c := pipeline.NewCascade(discardLogger(), failingSearcher(), staticSearcher())

		results, err := c.Search(context.Background(), "topic")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("canceled context surfaces as an error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := pipeline.NewCascade(discardLogger(), &mock.Searcher{
			SearchFn: func(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
				return nil, ctx.Err()
			},
		})

		_, err := c.Search(ctx, "topic")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
