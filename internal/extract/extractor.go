package extract

// Extractor turns a fetched page into quotation candidates.
// Implementations should be deterministic and avoid side effects.
type Extractor interface {
	Extract(input []byte) ([]string, error)
}

// WikiExtractor reads list items from a MediaWiki content region.
// An empty Selector means ContentSelector.
type WikiExtractor struct {
	Selector string
}

func (w WikiExtractor) Extract(input []byte) ([]string, error) {
	if w.Selector == "" || w.Selector == ContentSelector {
		return FromHTML(input)
	}
	doc, err := parseDocument(input)
	if err != nil {
		return nil, err
	}
	return Quotes(doc, w.Selector), nil
}
