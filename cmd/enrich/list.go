package main

import (
	"fmt"

	"github.com/contentloop/enrich"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := enrich.ArticleFilter{
		Limit:  c.Limit,
		SortBy: enrich.SortByCreatedAt,
	}
	if c.Updated {
		updated := true
		filter.IsUpdated = &updated
	}

	articles, err := deps.Articles.FindArticles(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", enrich.ErrorMessage(err))
		return err
	}

	if len(articles) == 0 {
		fmt.Fprintln(deps.Stdout, "No articles found. Use 'enrich scrape' to import some.")
		return nil
	}

	for _, a := range articles {
		marker := " "
		if a.IsUpdated {
			marker = "*"
		}
		fmt.Fprintf(deps.Stdout, "%s %s  %s  %s\n", marker, a.ID, a.Slug, a.Title)
	}

	return nil
}
