package main

import (
	"fmt"

	"github.com/contentloop/enrich"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	result, err := deps.Discoverer.Discover(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", enrich.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Imported %d articles (%d skipped, %d failed)\n",
		result.Saved, result.Skipped, result.Failed)
	return nil
}
