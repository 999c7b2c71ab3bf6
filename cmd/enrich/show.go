package main

import (
	"fmt"

	"github.com/contentloop/enrich"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	article, err := deps.Articles.FindArticleByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", enrich.ErrorMessage(err))
		return err
	}

	content := article.Content
	if c.Original && article.OriginalContent != "" {
		content = article.OriginalContent
	}

	fmt.Fprintf(deps.Stdout, "# %s\n", article.Title)
	if article.Author != "" {
		fmt.Fprintf(deps.Stdout, "Author: %s\n", article.Author)
	}
	fmt.Fprintf(deps.Stdout, "Source: %s\n", article.SourceURL)
	if article.IsUpdated && article.UpdatedAt != nil {
		fmt.Fprintf(deps.Stdout, "Enhanced: %s\n", article.UpdatedAt.Format("2006-01-02 15:04"))
		for _, ref := range article.ReferenceArticles {
			fmt.Fprintf(deps.Stdout, "Reference: %s (%s)\n", ref.Title, ref.URL)
		}
	}
	fmt.Fprintf(deps.Stdout, "\n%s\n", content)

	return nil
}
