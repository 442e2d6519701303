package index

import (
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// MemoryIndex is the read-side snapshot of the link and folder collections.
// Search and listing read from it; the service refreshes it after every write
// and the index syncer refreshes it periodically.
type MemoryIndex struct {
	mu         sync.RWMutex
	links      []domain.Link            // stored order
	linkByID   map[string]int           // ID -> position in links
	folders    map[string]domain.Folder // ID -> Folder
	folderIDs  []string                 // stored order
	generation uint64
	lastReload time.Time
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		linkByID: make(map[string]int),
		folders:  make(map[string]domain.Folder),
	}
}

// Replace swaps the whole snapshot unconditionally.
func (idx *MemoryIndex) Replace(links []domain.Link, folders []domain.Folder) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.replace(links, folders)
}

// ReplaceIfNewer swaps the snapshot only when gen is newer than the
// generation of the current one. It reports whether the swap happened.
func (idx *MemoryIndex) ReplaceIfNewer(gen uint64, links []domain.Link, folders []domain.Folder) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if gen <= idx.generation {
		return false
	}
	idx.generation = gen
	idx.replace(links, folders)
	return true
}

// Generation returns the generation of the current snapshot.
func (idx *MemoryIndex) Generation() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.generation
}

// replace rebuilds the snapshot. Callers hold mu.
func (idx *MemoryIndex) replace(links []domain.Link, folders []domain.Folder) {
	// Clear and rebuild
	idx.links = slices.Clone(links)
	idx.linkByID = make(map[string]int, len(links))
	for i, l := range idx.links {
		idx.linkByID[l.ID] = i
	}

	idx.folders = make(map[string]domain.Folder, len(folders))
	idx.folderIDs = make([]string, 0, len(folders))
	for _, f := range folders {
		idx.folders[f.ID] = f
		idx.folderIDs = append(idx.folderIDs, f.ID)
	}
	idx.lastReload = time.Now()
}

// Links returns a copy of every indexed link in stored order.
func (idx *MemoryIndex) Links() []domain.Link {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return slices.Clone(idx.links)
}

// VisibleLinks returns the indexed links that are not soft-deleted.
func (idx *MemoryIndex) VisibleLinks() []domain.Link {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	visible := make([]domain.Link, 0, len(idx.links))
	for _, l := range idx.links {
		if l.Status.Visible() {
			visible = append(visible, l)
		}
	}
	return visible
}

// Link retrieves a link by ID.
func (idx *MemoryIndex) Link(id string) (domain.Link, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	i, ok := idx.linkByID[id]
	if !ok {
		return domain.Link{}, false
	}
	return idx.links[i], true
}

// Folders returns every indexed folder in stored order.
func (idx *MemoryIndex) Folders() []domain.Folder {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	folders := make([]domain.Folder, 0, len(idx.folderIDs))
	for _, id := range idx.folderIDs {
		folders = append(folders, idx.folders[id])
	}
	return folders
}

// Folder retrieves a folder by ID.
func (idx *MemoryIndex) Folder(id string) (domain.Folder, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	f, ok := idx.folders[id]
	return f, ok
}

// Count returns the number of indexed links.
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.links)
}

// FolderCount returns the number of indexed folders.
func (idx *MemoryIndex) FolderCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.folders)
}

// GetLastReload returns when the snapshot was last replaced.
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
