package world

// VisibilityIndex holds one entity's broadcast override lists: specific
// instances and whole species ids the owner refuses to see, regardless of
// distance. Interpreted from the observer's perspective; A hiding B says
// nothing about B seeing A.
//
// Hide/unhide on absent entries are defined no-ops, not errors.
type VisibilityIndex struct {
	hiddenInstances map[string]struct{}
	hiddenIDs       map[int32]struct{}
}

func NewVisibilityIndex() *VisibilityIndex {
	return &VisibilityIndex{
		hiddenInstances: make(map[string]struct{}),
		hiddenIDs:       make(map[int32]struct{}),
	}
}

// Hide blacklists a specific instance. Idempotent.
func (v *VisibilityIndex) Hide(instance string) {
	v.hiddenInstances[instance] = struct{}{}
}

// HideID blacklists a whole species/template id. Idempotent. Used e.g. to
// blanket-hide all instances of a quest mob before its trigger fires.
func (v *VisibilityIndex) HideID(id int32) {
	v.hiddenIDs[id] = struct{}{}
}

// Unhide removes an instance from the hide list if present.
func (v *VisibilityIndex) Unhide(instance string) {
	delete(v.hiddenInstances, instance)
}

// UnhideID removes a species id from the hide list if present.
func (v *VisibilityIndex) UnhideID(id int32) {
	delete(v.hiddenIDs, id)
}

// IsHidden reports whether the owner refuses to see the target, either by
// instance or by species id.
func (v *VisibilityIndex) IsHidden(target *Entity) bool {
	if _, ok := v.hiddenInstances[target.Instance]; ok {
		return true
	}
	_, ok := v.hiddenIDs[target.ID]
	return ok
}

// HiddenCount returns the number of hide-list entries (both lists).
func (v *VisibilityIndex) HiddenCount() int {
	return len(v.hiddenInstances) + len(v.hiddenIDs)
}

// VisibleTo is the broadcast predicate: whether the observer should be told
// about the target. Asymmetric by design.
func VisibleTo(observer, target *Entity) bool {
	return !observer.Visibility.IsHidden(target)
}
