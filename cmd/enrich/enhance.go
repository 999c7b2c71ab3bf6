package main

import (
	"fmt"

	"github.com/contentloop/enrich"
)

// Run executes the enhance command.
func (c *EnhanceCmd) Run(deps *Dependencies) error {
	if c.ID != "" {
		article, withRefs, err := deps.Enhancer.EnhanceArticle(deps.Ctx, c.ID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", enrich.ErrorMessage(err))
			return err
		}

		if withRefs {
			fmt.Fprintf(deps.Stdout, "Enhanced %q with %d references\n", article.Title, len(article.ReferenceArticles))
		} else {
			fmt.Fprintf(deps.Stdout, "Enhanced %q (formatting only, no references found)\n", article.Title)
		}
		return nil
	}

	n, err := deps.Enhancer.EnhanceAll(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", enrich.ErrorMessage(err))
		return err
	}
	if n == 0 {
		fmt.Fprintln(deps.Stdout, "No articles need enhancement.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Processed %d articles\n", n)
	return nil
}
