// Package pages composes the landing page from its section fragments.
package pages

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/ignite/landing-page/internal/assets"
	"github.com/ignite/landing-page/internal/config"
	"github.com/ignite/landing-page/internal/metrics"
	"github.com/ignite/landing-page/internal/pkg/logger"
)

// LoadedAttr marks a placeholder that was filled on the server. The page
// script leaves such placeholders alone.
const LoadedAttr = "data-section-loaded"

// Report lists the section ids that were injected and those that were skipped.
type Report struct {
	Loaded  []string `json:"loaded"`
	Skipped []string `json:"skipped"`
}

// Composer injects section fragments into their placeholders.
type Composer struct {
	source   assets.Source
	sections []config.Section
	log      logger.Logger
}

// NewComposer creates a Composer reading fragments from source in manifest order.
func NewComposer(source assets.Source, sections []config.Section, log logger.Logger) *Composer {
	if log == nil {
		log = logger.Nop()
	}
	return &Composer{
		source:   source,
		sections: append([]config.Section(nil), sections...),
		log:      log,
	}
}

// Sections returns a copy of the manifest.
func (c *Composer) Sections() []config.Section {
	return append([]config.Section(nil), c.sections...)
}

// Compose fetches every fragment in order and sets it as the inner HTML of
// the element whose id matches. A fragment that cannot be read, or whose
// placeholder is absent, is skipped. Only an unparseable shell is an error.
func (c *Composer) Compose(ctx context.Context, shell []byte) ([]byte, Report, error) {
	var report Report

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(shell))
	if err != nil {
		return nil, report, fmt.Errorf("parsing page shell: %w", err)
	}

	for _, section := range c.sections {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		placeholder := doc.Find("#" + section.ID).First()
		if placeholder.Length() == 0 {
			c.skip(&report, section, "placeholder not found", nil)
			continue
		}

		fragment, err := c.source.ReadFile(ctx, section.File)
		if err != nil {
			c.skip(&report, section, "failed to load section", err)
			continue
		}

		placeholder.SetHtml(string(fragment))
		placeholder.SetAttr(LoadedAttr, "true")
		report.Loaded = append(report.Loaded, section.ID)
	}

	html, err := doc.Html()
	if err != nil {
		return nil, report, fmt.Errorf("rendering composed page: %w", err)
	}
	return []byte(html), report, nil
}

// Render implements assets.Renderer.
func (c *Composer) Render(ctx context.Context, shell []byte) ([]byte, error) {
	out, report, err := c.Compose(ctx, shell)
	if err != nil {
		return nil, err
	}
	c.log.Debug("page composed", "loaded", len(report.Loaded), "total", len(c.sections))
	return out, nil
}

func (c *Composer) skip(report *Report, section config.Section, reason string, err error) {
	report.Skipped = append(report.Skipped, section.ID)
	metrics.SectionSkipsTotal.Inc()

	fields := []interface{}{"section", section.ID, "file", section.File}
	if err != nil {
		fields = append(fields, "error", err)
	}
	c.log.Warn(reason, fields...)
}
