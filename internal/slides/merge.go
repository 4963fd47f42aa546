package slides

import "fmt"

// Merge concatenates the slides of decks in the given order. The result uses
// the first deck's slide size and keeps only text shapes; pictures, tables,
// charts, groups and connectors are dropped.
func Merge(decks [][]byte) ([]byte, error) {
	if len(decks) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}
	var out Deck
	for i, data := range decks {
		d, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("deck %d: %w", i+1, err)
		}
		if i == 0 {
			out.Width, out.Height = d.Width, d.Height
		}
		out.Slides = append(out.Slides, d.Slides...)
	}
	return Build(&out)
}

// Text returns the text of each slide, in slide order.
func Text(data []byte) ([]string, error) {
	d, err := Parse(data)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(d.Slides))
	for i, s := range d.Slides {
		texts[i] = s.Text()
	}
	return texts, nil
}

// SlideCount returns the number of slides in a deck.
func SlideCount(data []byte) (int, error) {
	d, err := Parse(data)
	if err != nil {
		return 0, err
	}
	return len(d.Slides), nil
}
