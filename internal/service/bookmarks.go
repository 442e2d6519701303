// Package service is the application layer over the repositories. It keeps
// the in-memory index current, counts operations and publishes lifecycle
// events; HTTP handlers, the CLI and the scheduler all go through it.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/events"
	"github.com/MrSnakeDoc/linkbox/internal/index"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/metrics"
	"github.com/MrSnakeDoc/linkbox/internal/repository"
	"github.com/MrSnakeDoc/linkbox/internal/search"
	"github.com/MrSnakeDoc/linkbox/internal/store"
)

// Bookmarks is the link/folder application service.
type Bookmarks struct {
	links   *repository.LinkRepository
	folders *repository.FolderRepository
	index   *index.MemoryIndex
	events  events.Publisher
	metrics *metrics.Metrics
	log     logger.Logger

	refreshMu  sync.Mutex
	generation atomic.Uint64
}

// Deps groups what Bookmarks needs. Events and Metrics are optional.
type Deps struct {
	Store   store.KeyValueStore
	Index   *index.MemoryIndex
	Events  events.Publisher
	Metrics *metrics.Metrics
	Logger  logger.Logger
	Options []repository.Option
}

// New builds the service. Call Refresh once before serving reads.
func New(d Deps) *Bookmarks {
	if d.Index == nil {
		d.Index = index.NewMemoryIndex()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	folders := repository.NewFolderRepository(d.Store, d.Options...)
	return &Bookmarks{
		links:   repository.NewLinkRepository(d.Store, folders, d.Options...),
		folders: folders,
		index:   d.Index,
		events:  d.Events,
		metrics: d.Metrics,
		log:     d.Logger,
	}
}

// Index exposes the snapshot the service reads from.
func (s *Bookmarks) Index() *index.MemoryIndex { return s.index }

// Refresh reloads the index snapshot from the store. Refreshes run one at a
// time and a snapshot read earlier never replaces one read later.
func (s *Bookmarks) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	gen := s.generation.Add(1)
	links, folders, err := s.links.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	if !s.index.ReplaceIfNewer(gen, links, folders) {
		return nil
	}
	s.metrics.Links.Set(float64(len(links)))
	s.metrics.Folders.Set(float64(len(folders)))
	return nil
}

// done records op, and on success refreshes the index and publishes e.
func (s *Bookmarks) done(ctx context.Context, op string, err error, e events.Event) {
	s.metrics.Observe(op, err)
	if err != nil {
		return
	}
	s.changed(ctx, op, e)
}

// changed refreshes the index after a committed write and publishes e.
func (s *Bookmarks) changed(ctx context.Context, op string, e events.Event) {
	if rerr := s.Refresh(ctx); rerr != nil {
		s.log.Warn("Index refresh after write failed", logger.String("op", op), logger.Error(rerr))
	}
	if perr := s.events.Publish(ctx, e); perr != nil {
		s.log.Warn("Failed to publish event", logger.String("type", string(e.Type)), logger.Error(perr))
	}
}

// ─────────────────────────────────────────────────────────────────
// Links
// ─────────────────────────────────────────────────────────────────

// Links returns visible links, optionally restricted to one folder.
func (s *Bookmarks) Links(folderID string) []domain.Link {
	links := s.index.VisibleLinks()
	if folderID == "" {
		return links
	}
	return slices.DeleteFunc(links, func(l domain.Link) bool { return l.Folder != folderID })
}

// Link returns one link by id, deleted ones included.
func (s *Bookmarks) Link(id string) (domain.Link, error) {
	link, ok := s.index.Link(id)
	if !ok {
		return domain.Link{}, domain.LinkNotFound(id)
	}
	return link, nil
}

// CreateLink stores a new link. When the type or thumbnail is missing it is
// derived from the URL.
func (s *Bookmarks) CreateLink(ctx context.Context, in repository.CreateLinkInput) (domain.Link, error) {
	if in.Type == "" {
		in.Type = domain.DetectLinkType(in.URL)
	}
	if in.Thumbnail == "" {
		in.Thumbnail = domain.YouTubeThumbnail(in.URL)
	}
	link, err := s.links.Create(ctx, in)
	e := events.New(events.LinkCreated, link.ID)
	e.FolderID = link.Folder
	s.done(ctx, "link.create", err, e)
	if err != nil {
		return domain.Link{}, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

// UpdateLink replaces a link and moves it between folders as needed.
func (s *Bookmarks) UpdateLink(ctx context.Context, link domain.Link) (domain.Link, error) {
	updated, err := s.links.Update(ctx, link)
	e := events.New(events.LinkUpdated, link.ID)
	e.FolderID = updated.Folder
	s.done(ctx, "link.update", err, e)
	if err != nil {
		return domain.Link{}, fmt.Errorf("update link: %w", err)
	}
	return updated, nil
}

// SetLinkStatus archives, restores or soft-deletes a link.
func (s *Bookmarks) SetLinkStatus(ctx context.Context, id string, status domain.Status) (domain.Link, error) {
	updated, err := s.links.SetStatus(ctx, id, status)
	s.done(ctx, "link.status", err, events.New(events.LinkUpdated, id))
	if err != nil {
		return domain.Link{}, fmt.Errorf("set link status: %w", err)
	}
	return updated, nil
}

// DeleteLink removes a link for good.
func (s *Bookmarks) DeleteLink(ctx context.Context, id string) error {
	err := s.links.Delete(ctx, id)
	s.done(ctx, "link.delete", err, events.New(events.LinkDeleted, id))
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// PurgeDeleted hard-deletes links soft-deleted before now-olderThan.
func (s *Bookmarks) PurgeDeleted(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	purged, err := s.links.Purge(ctx, func(l domain.Link) bool {
		return l.Status == domain.StatusDeleted && l.UpdatedAt.Before(cutoff)
	})
	if err == nil && len(purged) == 0 {
		s.metrics.Observe("link.purge", nil)
		return 0, nil
	}
	e := events.New(events.LinksPurged, "")
	e.Count = len(purged)
	s.done(ctx, "link.purge", err, e)
	if err != nil {
		return 0, fmt.Errorf("purge links: %w", err)
	}
	s.metrics.Purged.Add(float64(len(purged)))
	return len(purged), nil
}

// Tags returns every distinct tag of the visible links, sorted.
func (s *Bookmarks) Tags(ctx context.Context) ([]string, error) {
	counts, err := s.TagCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags, nil
}

// TagCounts returns how many visible links carry each tag. Soft-deleted
// links are left out, as they are from listing and search.
func (s *Bookmarks) TagCounts(ctx context.Context) (map[string]int, error) {
	links, err := s.links.ListVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tags: %w", err)
	}
	counts := make(map[string]int)
	for _, l := range links {
		for _, tag := range uniqueTags(l.Tags) {
			counts[tag]++
		}
	}
	return counts, nil
}

// uniqueTags drops empty and repeated tags, keeping first occurrences.
func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// Search runs query over the visible links of the snapshot.
func (s *Bookmarks) Search(query, filter string) ([]search.Result, error) {
	f, err := search.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	s.metrics.Searches.WithLabelValues(string(f)).Inc()
	return search.Search(s.index.VisibleLinks(), query, f), nil
}

// ─────────────────────────────────────────────────────────────────
// Folders
// ─────────────────────────────────────────────────────────────────

// Folders returns every folder in stored order.
func (s *Bookmarks) Folders() []domain.Folder {
	return s.index.Folders()
}

// Folder returns one folder by id.
func (s *Bookmarks) Folder(id string) (domain.Folder, error) {
	folder, ok := s.index.Folder(id)
	if !ok {
		return domain.Folder{}, domain.FolderNotFound(id)
	}
	return folder, nil
}

// CreateFolder adds an empty folder with a unique name.
func (s *Bookmarks) CreateFolder(ctx context.Context, in repository.CreateFolderInput) (domain.Folder, error) {
	folder, err := s.folders.Create(ctx, in)
	s.done(ctx, "folder.create", err, events.New(events.FolderCreated, folder.ID))
	if err != nil {
		return domain.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	return folder, nil
}

// EditFolder renames or recolors a folder.
func (s *Bookmarks) EditFolder(ctx context.Context, id string, patch repository.FolderPatch) (domain.Folder, error) {
	folder, err := s.folders.Edit(ctx, id, patch)
	s.done(ctx, "folder.edit", err, events.New(events.FolderUpdated, id))
	if err != nil {
		return domain.Folder{}, fmt.Errorf("edit folder: %w", err)
	}
	return folder, nil
}

// DeleteFolder removes a folder and unfiles its links. It returns how many
// links were unfiled.
func (s *Bookmarks) DeleteFolder(ctx context.Context, id string) (int, error) {
	n, err := s.links.DeleteFolder(ctx, id)
	e := events.New(events.FolderDeleted, id)
	e.Count = n
	s.done(ctx, "folder.delete", err, e)
	if err != nil {
		return 0, fmt.Errorf("delete folder: %w", err)
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────
// Import & maintenance
// ─────────────────────────────────────────────────────────────────

// ImportResult summarizes one Import call.
type ImportResult struct {
	FoldersCreated int `json:"foldersCreated"`
	LinksCreated   int `json:"linksCreated"`
	Skipped        int `json:"skipped"`
}

// Import files items into folders matched by exact name, creating missing
// folders. Items whose URL is already stored, or that have no URL, are skipped.
//
// Items are written one by one. When an item fails, what was written before
// it stays, and the returned result counts it.
func (s *Bookmarks) Import(ctx context.Context, items []domain.ImportItem) (ImportResult, error) {
	res, err := s.importItems(ctx, items)

	s.metrics.Imported.WithLabelValues("folder").Add(float64(res.FoldersCreated))
	s.metrics.Imported.WithLabelValues("link").Add(float64(res.LinksCreated))

	e := events.New(events.Imported, "")
	e.Count = res.LinksCreated
	if err != nil {
		s.metrics.Observe("import", err)
		if res.FoldersCreated > 0 || res.LinksCreated > 0 {
			s.changed(ctx, "import", e)
		}
		return res, err
	}
	s.done(ctx, "import", nil, e)
	return res, nil
}

func (s *Bookmarks) importItems(ctx context.Context, items []domain.ImportItem) (ImportResult, error) {
	var res ImportResult

	folders, err := s.folders.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("import: %w", err)
	}
	links, err := s.links.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("import: %w", err)
	}

	folderByName := make(map[string]string, len(folders))
	for _, f := range folders {
		folderByName[f.Name] = f.ID
	}
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		seen[l.URL] = struct{}{}
	}

	for _, item := range items {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			res.Skipped++
			continue
		}
		if _, dup := seen[url]; dup {
			res.Skipped++
			continue
		}

		folderID := ""
		if name := strings.TrimSpace(item.FolderName); name != "" {
			id, ok := folderByName[name]
			if !ok {
				folder, err := s.folders.Create(ctx, repository.CreateFolderInput{Name: name})
				if err != nil {
					return res, fmt.Errorf("import folder %q: %w", name, err)
				}
				id = folder.ID
				folderByName[name] = id
				res.FoldersCreated++
			}
			folderID = id
		}

		_, err := s.links.Create(ctx, repository.CreateLinkInput{
			URL:       url,
			Title:     item.Title,
			Type:      domain.DetectLinkType(url),
			Tags:      item.Tags,
			Memo:      item.Memo,
			Thumbnail: domain.YouTubeThumbnail(url),
			Folder:    folderID,
		})
		if err != nil {
			return res, fmt.Errorf("import link %s: %w", url, err)
		}
		seen[url] = struct{}{}
		res.LinksCreated++
	}
	return res, nil
}

// Verify reports membership drift without changing anything.
func (s *Bookmarks) Verify(ctx context.Context) (repository.Report, error) {
	report, err := s.links.Verify(ctx)
	s.metrics.Observe("verify", err)
	if err != nil {
		return repository.Report{}, fmt.Errorf("verify: %w", err)
	}
	return report, nil
}

// Repair fixes membership drift and returns what was found.
func (s *Bookmarks) Repair(ctx context.Context) (repository.Report, error) {
	report, err := s.links.Repair(ctx)
	s.metrics.Observe("repair", err)
	if err != nil {
		return repository.Report{}, fmt.Errorf("repair: %w", err)
	}
	if !report.Consistent() {
		if rerr := s.Refresh(ctx); rerr != nil {
			s.log.Warn("Index refresh after repair failed", logger.Error(rerr))
		}
	}
	return report, nil
}
