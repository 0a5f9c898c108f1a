package masonry

// Selection is the set of selected asset ids plus the anchor used for
// shift-click ranges. Every mutation reports the new set through OnChange.
// The zero value is an empty selection.
type Selection struct {
	ids    IDSet
	anchor int64
	hasAnc bool

	// OnChange receives a copy of the selection after every mutation.
	OnChange func(IDSet)
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: IDSet{}}
}

// Has reports whether id is selected.
func (s *Selection) Has(id int64) bool {
	return s.ids.Has(id)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return s.ids.Len()
}

// IDs returns a copy of the selected ids.
func (s *Selection) IDs() IDSet {
	return s.ids.Clone()
}

// Anchor returns the id shift-click ranges start from.
func (s *Selection) Anchor() (int64, bool) {
	return s.anchor, s.hasAnc
}

// SelectOnly replaces the selection with id.
func (s *Selection) SelectOnly(id int64) {
	s.ids = NewIDSet(id)
	s.setAnchor(id)
	s.changed()
}

// Toggle flips id in or out of the selection.
func (s *Selection) Toggle(id int64) {
	if s.ids.Has(id) {
		delete(s.ids, id)
	} else {
		s.set()[id] = struct{}{}
	}
	s.setAnchor(id)
	s.changed()
}

// SelectRange selects every item between fromID and toID inclusive, by their
// position in items. The order of the two ids does not matter. Unknown ids
// leave the selection untouched.
func (s *Selection) SelectRange(items []AssetRecord, fromID, toID int64) {
	from, to := indexOf(items, fromID), indexOf(items, toID)
	if from < 0 || to < 0 {
		return
	}
	if from > to {
		from, to = to, from
	}

	s.ids = make(IDSet, to-from+1)
	for _, rec := range items[from : to+1] {
		s.ids[rec.ID] = struct{}{}
	}
	s.changed()
}

// Extend selects the range from the anchor to id. Without an anchor it acts
// like SelectOnly.
func (s *Selection) Extend(items []AssetRecord, id int64) {
	if !s.hasAnc || indexOf(items, s.anchor) < 0 {
		s.SelectOnly(id)
		return
	}
	s.SelectRange(items, s.anchor, id)
}

// SelectAll selects every loaded item.
func (s *Selection) SelectAll(items []AssetRecord) {
	s.ids = make(IDSet, len(items))
	for _, rec := range items {
		s.ids[rec.ID] = struct{}{}
	}
	s.changed()
}

// ReplaceWith makes ids the whole selection.
func (s *Selection) ReplaceWith(ids IDSet) {
	s.ids = ids.Clone()
	s.changed()
}

// MergeWith adds ids to the selection.
func (s *Selection) MergeWith(ids IDSet) {
	set := s.set()
	for id := range ids {
		set[id] = struct{}{}
	}
	s.changed()
}

// Clear empties the selection and forgets the anchor.
func (s *Selection) Clear() {
	s.ids = IDSet{}
	s.hasAnc = false
	s.changed()
}

func (s *Selection) set() IDSet {
	if s.ids == nil {
		s.ids = IDSet{}
	}
	return s.ids
}

func (s *Selection) setAnchor(id int64) {
	s.anchor = id
	s.hasAnc = true
}

func (s *Selection) changed() {
	if s.OnChange != nil {
		s.OnChange(s.ids.Clone())
	}
}

func indexOf(items []AssetRecord, id int64) int {
	for i, rec := range items {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
