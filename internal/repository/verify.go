package repository

import (
	"context"
	"slices"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/store"
)

// FolderDrift describes how one folder's membership list disagrees with the
// links that point at it.
type FolderDrift struct {
	FolderID string `json:"folderId"`
	// Missing are links filed in the folder but absent from its list.
	Missing []string `json:"missing,omitempty"`
	// Stale are listed ids whose link is gone, filed elsewhere, or listed twice.
	Stale []string `json:"stale,omitempty"`
}

// Report is the result of a membership consistency check.
type Report struct {
	Folders []FolderDrift `json:"folders"`
	// Orphans are links whose folder does not exist.
	Orphans []string `json:"orphans"`
}

// Consistent reports whether nothing drifted.
func (r Report) Consistent() bool {
	return len(r.Folders) == 0 && len(r.Orphans) == 0
}

// Verify compares every Folder.Links list against Link.Folder without writing.
func (r *LinkRepository) Verify(ctx context.Context) (Report, error) {
	links, err := loadLinks(ctx, r.kv)
	if err != nil {
		return Report{}, err
	}
	folders, err := loadFolders(ctx, r.kv)
	if err != nil {
		return Report{}, err
	}
	return inspect(links, folders), nil
}

// Repair rebuilds folder membership lists from Link.Folder and unfiles orphan
// links. Valid entries keep their order; missing ids are appended in link
// order. It returns what was found before repairing.
func (r *LinkRepository) Repair(ctx context.Context) (Report, error) {
	var report Report
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		links, err := loadLinks(ctx, tx)
		if err != nil {
			return err
		}
		folders, err := loadFolders(ctx, tx)
		if err != nil {
			return err
		}

		report = inspect(links, folders)
		if report.Consistent() {
			return nil
		}

		now := r.opts.now()
		if len(report.Orphans) > 0 {
			for i := range links {
				if slices.Contains(report.Orphans, links[i].ID) {
					links[i].Folder = ""
					links[i].UpdatedAt = now
				}
			}
			if err := saveLinks(ctx, tx, links); err != nil {
				return err
			}
		}

		if len(report.Folders) > 0 {
			for i := range folders {
				members := membersOf(folders[i], links)
				if slices.Equal(members, folders[i].Links) {
					continue
				}
				folders[i].Links = members
				folders[i].UpdatedAt = now
			}
			if err := saveFolders(ctx, tx, folders); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

func inspect(links []domain.Link, folders []domain.Folder) Report {
	report := Report{Folders: []FolderDrift{}, Orphans: []string{}}

	known := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		known[f.ID] = struct{}{}
	}
	for _, l := range links {
		if l.Folder == "" {
			continue
		}
		if _, ok := known[l.Folder]; !ok {
			report.Orphans = append(report.Orphans, l.ID)
		}
	}

	for _, f := range folders {
		drift := FolderDrift{FolderID: f.ID}

		listed := make(map[string]struct{}, len(f.Links))
		for _, id := range f.Links {
			if _, dup := listed[id]; dup {
				drift.Stale = append(drift.Stale, id)
				continue
			}
			listed[id] = struct{}{}
			idx := indexOfLink(links, id)
			if idx < 0 || links[idx].Folder != f.ID {
				drift.Stale = append(drift.Stale, id)
			}
		}
		for _, l := range links {
			if l.Folder != f.ID {
				continue
			}
			if _, ok := listed[l.ID]; !ok {
				drift.Missing = append(drift.Missing, l.ID)
			}
		}

		if len(drift.Missing) > 0 || len(drift.Stale) > 0 {
			report.Folders = append(report.Folders, drift)
		}
	}
	return report
}

// membersOf returns the corrected membership list of f.
func membersOf(f domain.Folder, links []domain.Link) []string {
	members := make([]string, 0, len(f.Links))
	for _, id := range f.Links {
		if slices.Contains(members, id) {
			continue
		}
		if idx := indexOfLink(links, id); idx >= 0 && links[idx].Folder == f.ID {
			members = append(members, id)
		}
	}
	for _, l := range links {
		if l.Folder == f.ID && !slices.Contains(members, l.ID) {
			members = append(members, l.ID)
		}
	}
	return members
}
