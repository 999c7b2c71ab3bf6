package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/contentloop/enrich/api"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := api.NewServer(deps.Articles, deps.Enhancer, deps.Discoverer, deps.Logger)

	httpServer := &http.Server{
		Addr:              c.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(deps.Stdout, "listening on %s\n", c.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
