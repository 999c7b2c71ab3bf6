package enrich_test

import (
	"testing"

	"github.com/contentloop/enrich"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple title", "Intro to X", "intro-to-x"},
		{"punctuation stripped", "What's New? A Guide!", "whats-new-a-guide"},
		{"underscores collapse", "foo_bar__baz", "foo-bar-baz"},
		{"mixed separators collapse", "a - b _ c", "a-b-c"},
		{"leading and trailing trimmed", "  --Hello World--  ", "hello-world"},
		{"digits preserved", "Top 10 Tips for 2024", "top-10-tips-for-2024"},
		{"already a slug", "intro-to-x", "intro-to-x"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, enrich.Slugify(tt.title))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	t.Parallel()

	titles := []string{
		"Intro to X",
		"Chatbots: The Complete Guide - Part 2",
		"How AI Changes Support_Teams",
	}

	for _, title := range titles {
		slug := enrich.Slugify(title)
		assert.Equal(t, slug, enrich.Slugify(slug), "re-applying Slugify to %q changed the result", title)
	}
}
