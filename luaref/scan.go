package luaref

import (
	"iter"

	"github.com/PuerkitoBio/goquery"
)

// Predicate tests a single element.
type Predicate func(el *goquery.Selection) bool

// SiblingScan walks a flat run of elements the way the reference page lays
// out its sections: headings delimit sections without nesting them.
//
// Elements before the first Start match are skipped. From the start element
// on, Stop is tested first and ends the scan for good; otherwise the element
// is yielded when Find matches. A nil Start always matches, a nil Stop never
// does.
type SiblingScan struct {
	Find  Predicate
	Start Predicate
	Stop  Predicate
}

// All yields the matching elements following el.
func (s SiblingScan) All(el *goquery.Selection) iter.Seq[*goquery.Selection] {
	return s.ScanAll(el.NextAll())
}

// First returns the first matching element following el.
func (s SiblingScan) First(el *goquery.Selection) (*goquery.Selection, bool) {
	return s.ScanFirst(el.NextAll())
}

// ScanAll applies the scan rules to the elements of list in document order.
// The sequence can be ranged over any number of times.
func (s SiblingScan) ScanAll(list *goquery.Selection) iter.Seq[*goquery.Selection] {
	return func(yield func(*goquery.Selection) bool) {
		started := false
		for i := range list.Nodes {
			el := list.Eq(i)
			if !started {
				if s.Start != nil && !s.Start(el) {
					continue
				}
				started = true
			}
			if s.Stop != nil && s.Stop(el) {
				return
			}
			if s.Find(el) && !yield(el) {
				return
			}
		}
	}
}

// ScanFirst returns the first element of list matched by the scan.
func (s SiblingScan) ScanFirst(list *goquery.Selection) (*goquery.Selection, bool) {
	for el := range s.ScanAll(list) {
		return el, true
	}
	return nil, false
}

func hasClass(name string) Predicate {
	return func(el *goquery.Selection) bool {
		return el.HasClass(name)
	}
}

func isTag(tag string) Predicate {
	return func(el *goquery.Selection) bool {
		return goquery.NodeName(el) == tag
	}
}
