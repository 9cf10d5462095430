package internal

// Playlist tracks the currently and previously selected item against an
// externally rendered, ordered list of item identifiers. The list is a
// read-only view: the playlist copies it and never mutates the original.
//
// Navigation clamps at both ends, no wraparound. Every resolved target is
// applied optimistically at resolution time, before the server confirms;
// see the coordinator for the resulting select request.
type Playlist struct {
	items    []string
	current  string
	previous string
}

func NewPlaylist() *Playlist {
	return &Playlist{}
}

// SetItems replaces the item list with a copy of ids.
func (p *Playlist) SetItems(ids []string) {
	p.items = append([]string(nil), ids...)
}

// Current returns the currently selected item identifier, or "".
func (p *Playlist) Current() string {
	return p.current
}

// Previous returns the previously selected item identifier, or "".
func (p *Playlist) Previous() string {
	return p.previous
}

// Next resolves the item following the current one. With no current item
// it resolves the first. On the last item it is a no-op.
func (p *Playlist) Next() (string, bool) {
	if len(p.items) == 0 {
		return "", false
	}
	i := p.indexOf(p.current)
	if i < 0 {
		return p.advance(p.items[0])
	}
	if i == len(p.items)-1 {
		return "", false
	}
	return p.advance(p.items[i+1])
}

// Prev resolves the item preceding the current one. With no current item,
// or on the first item, it clamps to the first.
func (p *Playlist) Prev() (string, bool) {
	if len(p.items) == 0 {
		return "", false
	}
	i := p.indexOf(p.current)
	if i <= 0 {
		return p.advance(p.items[0])
	}
	return p.advance(p.items[i-1])
}

// Select resolves id directly. Reselecting the current item is a no-op.
func (p *Playlist) Select(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	return p.advance(id)
}

// advance applies the optimistic state update and suppresses no-op
// transitions onto the already-current item.
func (p *Playlist) advance(target string) (string, bool) {
	if target == p.current {
		return "", false
	}
	p.previous = p.current
	p.current = target
	return target, true
}

func (p *Playlist) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range p.items {
		if item == id {
			return i
		}
	}
	return -1
}
