package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"financial-qa/internal/models"
)

// Fact is a single tagged value extracted from a structured filing:
// a namespaced element with optional context and unit references.
type Fact struct {
	Name       string
	ContextRef string
	UnitRef    string
	Value      string
}

// structuralTags are XBRL plumbing elements, never facts. Matched against
// the lower-cased local name.
var structuralTags = map[string]bool{
	"context":         true,
	"unit":            true,
	"identifier":      true,
	"segment":         true,
	"entity":          true,
	"period":          true,
	"startdate":       true,
	"enddate":         true,
	"instant":         true,
	"measure":         true,
	"divide":          true,
	"unitnumerator":   true,
	"unitdenominator": true,
	"schemaref":       true,
}

func (in *Ingestor) processXBRL(filePath string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	facts, err := parseFacts(f)
	if err != nil {
		return nil, err
	}

	categories, grouped := groupFacts(facts)

	var chunks []models.Chunk
	for _, category := range categories {
		catFacts := grouped[category]
		text := renderFacts(category, catFacts)
		if strings.TrimSpace(text) == "" {
			continue
		}
		for idx, segment := range in.chunker.Split(text) {
			chunks = append(chunks, models.Chunk{
				Text: segment,
				Meta: models.Metadata{
					SourcePath:   filePath,
					DocumentType: models.DocumentTypeStructured,
					Category:     category,
					FactCount:    len(catFacts),
					ChunkIndex:   idx,
				},
			})
		}
	}
	return chunks, nil
}

// elemFrame tracks one open element during the token scan. Only character
// data before the first child counts as the element's own text, matching
// how fact values are laid out in filings.
type elemFrame struct {
	name       xml.Name
	contextRef string
	unitRef    string
	text       strings.Builder
	hasChild   bool
}

// parseFacts scans every element of the document. An element becomes a
// fact when it carries a namespace, is not a structural tag, and has
// non-empty text content. The qualified name uses the prefix declared for
// the element's namespace, falling back to the bare local name when the
// namespace was declared without one.
func parseFacts(r io.Reader) ([]Fact, error) {
	decoder := xml.NewDecoder(r)

	nsPrefix := map[string]string{} // namespace URI -> first declared prefix
	var stack []*elemFrame
	var facts []Fact

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing filing: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].hasChild = true
			}
			frame := &elemFrame{name: t.Name}
			for _, attr := range t.Attr {
				switch {
				case attr.Name.Space == "xmlns":
					if _, seen := nsPrefix[attr.Value]; !seen {
						nsPrefix[attr.Value] = attr.Name.Local
					}
				case attr.Name.Local == "contextRef":
					frame.contextRef = attr.Value
				case attr.Name.Local == "unitRef":
					frame.unitRef = attr.Value
				}
			}
			stack = append(stack, frame)

		case xml.CharData:
			if len(stack) > 0 && !stack[len(stack)-1].hasChild {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				continue // the root element is never a fact
			}
			if fact, ok := factFromFrame(frame, nsPrefix); ok {
				facts = append(facts, fact)
			}
		}
	}
	return facts, nil
}

func factFromFrame(frame *elemFrame, nsPrefix map[string]string) (Fact, bool) {
	if frame.name.Space == "" {
		return Fact{}, false
	}
	if structuralTags[strings.ToLower(frame.name.Local)] {
		return Fact{}, false
	}
	value := strings.TrimSpace(frame.text.String())
	if value == "" {
		return Fact{}, false
	}

	name := frame.name.Local
	if prefix := nsPrefix[frame.name.Space]; prefix != "" {
		name = prefix + ":" + frame.name.Local
	}

	contextRef := frame.contextRef
	if contextRef == "" {
		contextRef = "N/A"
	}

	return Fact{
		Name:       name,
		ContextRef: contextRef,
		UnitRef:    frame.unitRef,
		Value:      value,
	}, true
}

// groupFacts buckets facts by their namespace prefix, in first-seen order.
// Facts without a prefix form a category under their bare name.
func groupFacts(facts []Fact) ([]string, map[string][]Fact) {
	var order []string
	grouped := map[string][]Fact{}
	for _, fact := range facts {
		category := fact.Name
		if i := strings.Index(fact.Name, ":"); i >= 0 {
			category = fact.Name[:i]
		}
		if _, seen := grouped[category]; !seen {
			order = append(order, category)
		}
		grouped[category] = append(grouped[category], fact)
	}
	return order, grouped
}

// renderFacts produces the human-readable block for one category: a
// header, then each distinct fact name with one line per instance.
func renderFacts(category string, facts []Fact) string {
	parts := []string{fmt.Sprintf("Financial Data - %s Category:", strings.ToUpper(category))}

	var names []string
	byName := map[string][]Fact{}
	for _, fact := range facts {
		if _, seen := byName[fact.Name]; !seen {
			names = append(names, fact.Name)
		}
		byName[fact.Name] = append(byName[fact.Name], fact)
	}
	sort.Strings(names)

	for _, name := range names {
		local := name
		if i := strings.LastIndex(name, ":"); i >= 0 {
			local = name[i+1:]
		}
		parts = append(parts, "\n"+titleCase(strings.ReplaceAll(local, "_", " "))+":")

		for _, fact := range byName[name] {
			line := "  - Value: " + fact.Value
			if fact.UnitRef != "" {
				line += " (" + fact.UnitRef + ")"
			}
			if fact.ContextRef != "N/A" {
				line += " [Context: " + fact.ContextRef + "]"
			}
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}

// titleCase upper-cases the first letter of every letter run and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}
