package model

// LevelDiff describes the differences at one hierarchy level.
// All three slices hold identifiers: Added in the newer registry's
// discovery order, Removed in the older registry's order, Changed in the
// newer registry's order.
type LevelDiff struct {
	// Added identifiers are present in the newer registry only.
	Added []string

	// Removed identifiers are present in the older registry only.
	Removed []string

	// Changed identifiers are present in both registries with a
	// different display name or URL.
	Changed []string
}

// Empty reports whether the level has no differences.
func (d *LevelDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffResult describes the structural differences between two registries,
// scoped at each of the three hierarchy levels.
type DiffResult struct {
	Titles   LevelDiff
	Chapters LevelDiff
	Sections LevelDiff
}

// Empty reports whether the two registries are structurally identical.
func (d *DiffResult) Empty() bool {
	return d.Titles.Empty() && d.Chapters.Empty() && d.Sections.Empty()
}

// nodeMeta is the comparable payload of one tree node.
// Presence is keyed by identifier; equality beyond presence covers the
// display name and URL fields.
type nodeMeta struct {
	name string
	url  string
}

// Diff compares two registries and returns the added, removed, and changed
// identifiers at each hierarchy level. The comparison is pure: neither
// registry is modified, and no persistence policy is applied here. Whether
// a non-empty diff warrants saving a new registry is the caller's decision.
func Diff(older, newer *Registry) *DiffResult {
	result := &DiffResult{}

	diffLevel(&result.Titles, titleNodes(older), titleNodes(newer))
	diffLevel(&result.Chapters, chapterNodes(older), chapterNodes(newer))
	diffLevel(&result.Sections, sectionNodes(older), sectionNodes(newer))

	return result
}

// orderedNodes is an insertion-ordered identifier -> metadata view of one
// hierarchy level. Chapter and section identifiers are composite and
// therefore unique across the whole registry, so a flat view per level is
// safe.
type orderedNodes struct {
	order []string
	meta  map[string]nodeMeta
}

func newOrderedNodes(capacity int) *orderedNodes {
	return &orderedNodes{
		order: make([]string, 0, capacity),
		meta:  make(map[string]nodeMeta, capacity),
	}
}

func (n *orderedNodes) add(id, name, url string) {
	if _, ok := n.meta[id]; !ok {
		n.order = append(n.order, id)
	}
	n.meta[id] = nodeMeta{name: name, url: url}
}

// diffLevel fills one LevelDiff from the old and new node views.
func diffLevel(out *LevelDiff, old, new *orderedNodes) {
	for _, id := range new.order {
		oldMeta, ok := old.meta[id]
		if !ok {
			out.Added = append(out.Added, id)
			continue
		}
		if oldMeta != new.meta[id] {
			out.Changed = append(out.Changed, id)
		}
	}
	for _, id := range old.order {
		if _, ok := new.meta[id]; !ok {
			out.Removed = append(out.Removed, id)
		}
	}
}

func titleNodes(r *Registry) *orderedNodes {
	nodes := newOrderedNodes(len(r.Titles))
	for i := range r.Titles {
		t := &r.Titles[i]
		nodes.add(t.TitleNumber, t.Name, t.URL)
	}
	return nodes
}

func chapterNodes(r *Registry) *orderedNodes {
	nodes := newOrderedNodes(r.ChapterCount())
	for i := range r.Titles {
		for j := range r.Titles[i].Chapters {
			c := &r.Titles[i].Chapters[j]
			nodes.add(c.ChapterNumber, c.Name, c.URL)
		}
	}
	return nodes
}

func sectionNodes(r *Registry) *orderedNodes {
	nodes := newOrderedNodes(r.SectionCount())
	for i := range r.Titles {
		for j := range r.Titles[i].Chapters {
			for k := range r.Titles[i].Chapters[j].Sections {
				s := &r.Titles[i].Chapters[j].Sections[k]
				nodes.add(s.SectionNumber, s.Name, s.URL)
			}
		}
	}
	return nodes
}
