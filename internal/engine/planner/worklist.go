package planner

import (
	"slices"

	"go.trai.ch/draft/internal/core/domain"
)

// workItem is a file waiting to be processed by a sources phase.
type workItem struct {
	path     string
	fileType domain.FileType
	// file is the declaring build file; nil for generated files.
	file *domain.BuildFile
	// chain lists every producer that led to the file, outermost first.
	chain []producer
}

// producedBy reports whether p already appears in the chain that generated the item.
func (w workItem) producedBy(p producer) bool {
	return slices.ContainsFunc(w.chain, p.same)
}

// worklist is a FIFO queue. Generated files are appended and processed after the
// files declared before them.
type worklist struct {
	items []workItem
}

func (w *worklist) push(items ...workItem) {
	w.items = append(w.items, items...)
}

func (w *worklist) pop() (workItem, bool) {
	if len(w.items) == 0 {
		return workItem{}, false
	}
	item := w.items[0]
	w.items = w.items[1:]
	return item, true
}
