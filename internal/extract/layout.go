package extract

import (
	"fmt"

	"github.com/hyperifyio/faithindex/internal/selector"
)

// Layout holds the structural queries for one site's markup. Site changes
// should only ever touch this data, never the extraction code.
type Layout struct {
	// CategoryLinks selects the anchors on the index page, one per tradition.
	CategoryLinks selector.Selector `yaml:"categoryLinks" json:"categoryLinks"`
	// PromoParagraphs selects the summary paragraphs on a detail page.
	PromoParagraphs selector.Selector `yaml:"promoParagraphs" json:"promoParagraphs"`
	// Accordions selects the collapsible blocks on a detail page.
	Accordions selector.Selector `yaml:"accordions" json:"accordions"`
	// AccordionHeading is evaluated relative to each accordion block.
	AccordionHeading selector.Selector `yaml:"accordionHeading" json:"accordionHeading"`
	// AccordionLinks is evaluated relative to each accordion block.
	AccordionLinks selector.Selector `yaml:"accordionLinks" json:"accordionLinks"`
}

// DefaultLayout matches the archived religions section of bbc.co.uk.
func DefaultLayout() Layout {
	return Layout{
		CategoryLinks:    selector.MustXPath(`//*[@id="prg-wrapper-featured"]/div[2]/div[2]/div/div/ul/li/h3/a`),
		PromoParagraphs:  selector.MustXPath(`//*[@id="prg-wrapper-featured"]//div[contains(@class,"top_promo")]//div[@class="content"]/p`),
		Accordions:       selector.MustXPath(`//*[@id="prg-wrapper-featured"]//div[contains(@class,"accordion")]`),
		AccordionHeading: selector.MustXPath(`./h2`),
		AccordionLinks:   selector.MustXPath(`.//div[contains(@class,"accordion_content")]//a`),
	}
}

// Merge returns l with any empty selector replaced by the one from fallback.
func (l Layout) Merge(fallback Layout) Layout {
	pick := func(a, b selector.Selector) selector.Selector {
		if a.Expr == "" {
			return b
		}
		return a
	}
	return Layout{
		CategoryLinks:    pick(l.CategoryLinks, fallback.CategoryLinks),
		PromoParagraphs:  pick(l.PromoParagraphs, fallback.PromoParagraphs),
		Accordions:       pick(l.Accordions, fallback.Accordions),
		AccordionHeading: pick(l.AccordionHeading, fallback.AccordionHeading),
		AccordionLinks:   pick(l.AccordionLinks, fallback.AccordionLinks),
	}
}

// Compile validates every selector in the layout.
func (l *Layout) Compile() error {
	fields := []struct {
		name string
		sel  *selector.Selector
	}{
		{"categoryLinks", &l.CategoryLinks},
		{"promoParagraphs", &l.PromoParagraphs},
		{"accordions", &l.Accordions},
		{"accordionHeading", &l.AccordionHeading},
		{"accordionLinks", &l.AccordionLinks},
	}
	for _, f := range fields {
		if err := f.sel.Compile(); err != nil {
			return fmt.Errorf("layout %s: %w", f.name, err)
		}
	}
	return nil
}
