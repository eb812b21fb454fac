// Package ordering reorders résumé sections in response to drag-and-drop gestures.
package ordering

import (
	"fmt"
	"log"

	"github.com/jonathan/resume-studio/internal/types"
)

// OutOfRangeError reports a move whose source or target index is outside the
// current section list. The document is left unchanged.
type OutOfRangeError struct {
	From  int
	To    int
	Count int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("section move out of range: from=%d to=%d count=%d", e.From, e.To, e.Count)
}

// MoveSection moves the section at fromIndex so that it ends up at toIndex.
// The section is removed first and then inserted into the shortened list, so
// moving index 0 to 2 in [A,B,C,D] yields [B,C,A,D]. Ids and contents never change.
func MoveSection(doc *types.Document, fromIndex, toIndex int) error {
	sections := doc.Sections()
	count := len(sections)
	if fromIndex < 0 || fromIndex >= count || toIndex < 0 || toIndex >= count {
		err := &OutOfRangeError{From: fromIndex, To: toIndex, Count: count}
		log.Printf("[ordering] %v", err)
		return err
	}
	if fromIndex == toIndex {
		return nil
	}

	moved := sections[fromIndex]
	out := make([]types.Section, 0, count)
	out = append(out, sections[:fromIndex]...)
	out = append(out, sections[fromIndex+1:]...)
	out = append(out[:toIndex], append([]types.Section{moved}, out[toIndex:]...)...)

	doc.Resume.Sections = out
	return nil
}

// MoveSectionByID moves the section with the given id to toIndex
func MoveSectionByID(doc *types.Document, id string, toIndex int) error {
	from := doc.SectionIndex(id)
	if from < 0 {
		err := &OutOfRangeError{From: from, To: toIndex, Count: len(doc.Sections())}
		log.Printf("[ordering] section %s not found: %v", id, err)
		return err
	}
	return MoveSection(doc, from, toIndex)
}
