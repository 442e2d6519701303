package repository

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/store"
)

// LinkRepository is CRUD over the link collection. Every write that touches
// a link's folder goes through the Synchronizer inside the same transaction.
type LinkRepository struct {
	kv      store.KeyValueStore
	folders *FolderRepository
	opts    options
}

// NewLinkRepository creates a link repository over kv. folders must sit on the
// same store; when nil a folder repository over kv is created.
func NewLinkRepository(kv store.KeyValueStore, folders *FolderRepository, opts ...Option) *LinkRepository {
	o := buildOptions(opts)
	if folders == nil {
		folders = &FolderRepository{kv: kv, opts: o}
	}
	return &LinkRepository{kv: kv, folders: folders, opts: o}
}

func (r *LinkRepository) in(tx store.KeyValueStore) *LinkRepository {
	return &LinkRepository{kv: tx, folders: r.folders.in(tx), opts: r.opts}
}

func (r *LinkRepository) sync() *Synchronizer {
	return NewSynchronizer(r.folders)
}

// CreateLinkInput carries the caller-supplied fields of a new link.
type CreateLinkInput struct {
	URL       string
	Title     string
	Type      domain.LinkType // defaults to domain.LinkTypeOther
	Tags      []string
	Memo      string
	Thumbnail string
	Folder    string
}

// ListAll returns every stored link, deleted ones included.
func (r *LinkRepository) ListAll(ctx context.Context) ([]domain.Link, error) {
	return loadLinks(ctx, r.kv)
}

// Snapshot loads both collections in one transaction so the pair is
// consistent on transactional stores.
func (r *LinkRepository) Snapshot(ctx context.Context) ([]domain.Link, []domain.Folder, error) {
	var (
		links   []domain.Link
		folders []domain.Folder
	)
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		l, err := loadLinks(ctx, tx)
		if err != nil {
			return err
		}
		f, err := loadFolders(ctx, tx)
		if err != nil {
			return err
		}
		links, folders = l, f
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return links, folders, nil
}

// ListVisible returns links whose status is not deleted.
func (r *LinkRepository) ListVisible(ctx context.Context) ([]domain.Link, error) {
	links, err := loadLinks(ctx, r.kv)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(links, func(l domain.Link) bool { return !l.Status.Visible() }), nil
}

// ListByFolder returns the links whose Folder equals folderID, in stored order.
// It filters on Link.Folder, not on the folder's membership list.
func (r *LinkRepository) ListByFolder(ctx context.Context, folderID string) ([]domain.Link, error) {
	links, err := loadLinks(ctx, r.kv)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(links, func(l domain.Link) bool { return l.Folder != folderID }), nil
}

// GetByID returns the link with id or a NotFound error.
func (r *LinkRepository) GetByID(ctx context.Context, id string) (domain.Link, error) {
	links, err := loadLinks(ctx, r.kv)
	if err != nil {
		return domain.Link{}, err
	}
	idx := indexOfLink(links, id)
	if idx < 0 {
		return domain.Link{}, domain.LinkNotFound(id)
	}
	return links[idx], nil
}

// Create stores a new active link and files it in its folder, if any.
func (r *LinkRepository) Create(ctx context.Context, in CreateLinkInput) (domain.Link, error) {
	link := domain.Link{
		URL:       strings.TrimSpace(in.URL),
		Title:     in.Title,
		Type:      in.Type,
		Tags:      in.Tags,
		Memo:      in.Memo,
		Thumbnail: in.Thumbnail,
		Folder:    in.Folder,
		Status:    domain.StatusActive,
	}
	if link.Type == "" {
		link.Type = domain.LinkTypeOther
	}
	if err := link.Validate(); err != nil {
		return domain.Link{}, err
	}

	var created domain.Link
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		links, err := loadLinks(ctx, tx)
		if err != nil {
			return err
		}

		id := r.opts.newID()
		if indexOfLink(links, id) >= 0 {
			return domain.LinkExists(id)
		}

		now := r.opts.now()
		created = link
		created.ID = id
		created.CreatedAt = now
		created.UpdatedAt = now

		if err := saveLinks(ctx, tx, append(links, created)); err != nil {
			return err
		}
		return r.in(tx).sync().Sync(ctx, created.Folder, created.ID, ActionAdd)
	})
	if err != nil {
		return domain.Link{}, err
	}
	return created, nil
}

// Update replaces the stored link with the same id and reconciles folder
// membership between its previous and new folder.
//
// Zero CreatedAt, Type and Status are taken from the stored copy so callers
// may send a partial object for those fields.
func (r *LinkRepository) Update(ctx context.Context, link domain.Link) (domain.Link, error) {
	var updated domain.Link
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		links, err := loadLinks(ctx, tx)
		if err != nil {
			return err
		}

		idx := indexOfLink(links, link.ID)
		if idx < 0 {
			return domain.LinkNotFound(link.ID)
		}
		previous := links[idx]

		next := link
		if next.CreatedAt.IsZero() {
			next.CreatedAt = previous.CreatedAt
		}
		if next.Type == "" {
			next.Type = previous.Type
		}
		if next.Status == "" {
			next.Status = previous.Status
		}
		if err := next.Validate(); err != nil {
			return err
		}
		next.UpdatedAt = r.opts.now()
		links[idx] = next

		if err := saveLinks(ctx, tx, links); err != nil {
			return err
		}
		if err := r.in(tx).sync().Reconcile(ctx, next.ID, previous.Folder, next.Folder); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.Link{}, err
	}
	return updated, nil
}

// Delete removes the link with id and drops it from its folder.
func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	return store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		links, err := loadLinks(ctx, tx)
		if err != nil {
			return err
		}

		idx := indexOfLink(links, id)
		if idx < 0 {
			return domain.LinkNotFound(id)
		}
		folderID := links[idx].Folder

		if err := saveLinks(ctx, tx, slices.Delete(links, idx, idx+1)); err != nil {
			return err
		}
		return r.in(tx).sync().Sync(ctx, folderID, id, ActionRemove)
	})
}

// SetStatus changes the lifecycle status of a link. Folder membership is left
// alone: a deleted link stays filed until it is purged.
func (r *LinkRepository) SetStatus(ctx context.Context, id string, status domain.Status) (domain.Link, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return domain.Link{}, err
	}
	var updated domain.Link
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		links := r.in(tx)
		link, err := links.GetByID(ctx, id)
		if err != nil {
			return err
		}
		link.Status = status
		updated, err = links.Update(ctx, link)
		return err
	})
	if err != nil {
		return domain.Link{}, err
	}
	return updated, nil
}

// ListAllTags returns the distinct non-empty tags of every link, sorted.
func (r *LinkRepository) ListAllTags(ctx context.Context) ([]string, error) {
	counts, err := r.TagCounts(ctx)
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// TagCounts returns how many links carry each non-empty tag.
// A tag repeated on one link is counted once for that link.
func (r *LinkRepository) TagCounts(ctx context.Context) (map[string]int, error) {
	links, err := loadLinks(ctx, r.kv)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, l := range links {
		seen := make(map[string]struct{}, len(l.Tags))
		for _, tag := range l.Tags {
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}
	return counts, nil
}

// DeleteFolder removes a folder and unfiles every link that pointed at it.
// It returns the number of links that were unfiled.
func (r *LinkRepository) DeleteFolder(ctx context.Context, folderID string) (int, error) {
	var unfiled int
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		if err := r.folders.in(tx).Delete(ctx, folderID); err != nil {
			return err
		}

		links, err := loadLinks(ctx, tx)
		if err != nil {
			return err
		}

		now := r.opts.now()
		count := 0
		for i := range links {
			if links[i].Folder != folderID {
				continue
			}
			links[i].Folder = ""
			links[i].UpdatedAt = now
			count++
		}
		unfiled = count
		if count == 0 {
			return nil
		}
		return saveLinks(ctx, tx, links)
	})
	if err != nil {
		return 0, err
	}
	return unfiled, nil
}

// Purge hard-deletes links for which match returns true and drops them from
// their folders. It returns the removed links.
func (r *LinkRepository) Purge(ctx context.Context, match func(domain.Link) bool) ([]domain.Link, error) {
	var purged []domain.Link
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		links, err := loadLinks(ctx, tx)
		if err != nil {
			return err
		}

		var (
			keep    = make([]domain.Link, 0, len(links))
			removed []domain.Link
		)
		for _, l := range links {
			if match(l) {
				removed = append(removed, l)
				continue
			}
			keep = append(keep, l)
		}
		purged = removed
		if len(removed) == 0 {
			return nil
		}

		if err := saveLinks(ctx, tx, keep); err != nil {
			return err
		}
		sync := r.in(tx).sync()
		for _, l := range removed {
			if err := sync.Sync(ctx, l.Folder, l.ID, ActionRemove); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purged, nil
}

func indexOfLink(links []domain.Link, id string) int {
	return slices.IndexFunc(links, func(l domain.Link) bool { return l.ID == id })
}
