package repository

import (
	"context"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/store"
)

// FolderRepository is CRUD over the folder collection. It owns folder name
// uniqueness and folder existence checks.
type FolderRepository struct {
	kv   store.KeyValueStore
	opts options
}

// NewFolderRepository creates a folder repository over kv.
func NewFolderRepository(kv store.KeyValueStore, opts ...Option) *FolderRepository {
	return &FolderRepository{kv: kv, opts: buildOptions(opts)}
}

// in returns a copy of the repository bound to a transaction.
func (r *FolderRepository) in(tx store.KeyValueStore) *FolderRepository {
	return &FolderRepository{kv: tx, opts: r.opts}
}

// CreateFolderInput carries the caller-supplied fields of a new folder.
type CreateFolderInput struct {
	Name   string
	Color  string // defaults to domain.DefaultFolderColor
	Parent string
}

// FolderPatch lists the editable fields of a folder. Nil fields are left alone.
type FolderPatch struct {
	Name  *string
	Color *string
}

// ListAll returns every folder in stored order.
func (r *FolderRepository) ListAll(ctx context.Context) ([]domain.Folder, error) {
	return loadFolders(ctx, r.kv)
}

// GetByID returns the folder with id or a NotFound error.
func (r *FolderRepository) GetByID(ctx context.Context, id string) (domain.Folder, error) {
	folders, err := loadFolders(ctx, r.kv)
	if err != nil {
		return domain.Folder{}, err
	}
	idx := indexOfFolder(folders, id)
	if idx < 0 {
		return domain.Folder{}, domain.FolderNotFound(id)
	}
	return folders[idx], nil
}

// Create appends a new, empty, active folder.
// It fails with AlreadyExists when another folder has exactly the same name,
// and persists nothing in that case.
func (r *FolderRepository) Create(ctx context.Context, in CreateFolderInput) (domain.Folder, error) {
	color := in.Color
	if color == "" {
		color = domain.DefaultFolderColor
	}
	candidate := domain.Folder{
		Name:   in.Name,
		Color:  color,
		Status: domain.StatusActive,
		Links:  []string{},
		Parent: in.Parent,
	}
	if err := candidate.Validate(); err != nil {
		return domain.Folder{}, err
	}

	var created domain.Folder
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		folders, err := loadFolders(ctx, tx)
		if err != nil {
			return err
		}

		id := r.opts.newID()
		if indexOfFolder(folders, id) >= 0 {
			return domain.FolderExists(id)
		}
		if nameTaken(folders, in.Name, "") {
			return domain.FolderExists(in.Name)
		}

		now := r.opts.now()
		created = candidate
		created.ID = id
		created.CreatedAt = now
		created.UpdatedAt = now

		return saveFolders(ctx, tx, append(folders, created))
	})
	if err != nil {
		return domain.Folder{}, err
	}
	return created, nil
}

// Upsert replaces the folder with the same id, stamping UpdatedAt, or
// appends it unchanged when no folder has that id. Callers pass a complete
// folder. There is no existence or uniqueness check; use Replace for edits.
func (r *FolderRepository) Upsert(ctx context.Context, folder domain.Folder) error {
	if folder.Links == nil {
		folder.Links = []string{}
	}
	return store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		folders, err := loadFolders(ctx, tx)
		if err != nil {
			return err
		}

		if idx := indexOfFolder(folders, folder.ID); idx >= 0 {
			folder.UpdatedAt = r.opts.now()
			folders[idx] = folder
		} else {
			folders = append(folders, folder)
		}

		return saveFolders(ctx, tx, folders)
	})
}

// Update is the historical name of Upsert.
func (r *FolderRepository) Update(ctx context.Context, folder domain.Folder) error {
	return r.Upsert(ctx, folder)
}

// Replace overwrites an existing folder. It fails with NotFound when the id
// is unknown and with AlreadyExists when the new name belongs to another folder.
func (r *FolderRepository) Replace(ctx context.Context, folder domain.Folder) error {
	if err := folder.Validate(); err != nil {
		return err
	}
	if folder.Links == nil {
		folder.Links = []string{}
	}
	return store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		folders, err := loadFolders(ctx, tx)
		if err != nil {
			return err
		}

		idx := indexOfFolder(folders, folder.ID)
		if idx < 0 {
			return domain.FolderNotFound(folder.ID)
		}
		if nameTaken(folders, folder.Name, folder.ID) {
			return domain.FolderExists(folder.Name)
		}

		folder.UpdatedAt = r.opts.now()
		folders[idx] = folder
		return saveFolders(ctx, tx, folders)
	})
}

// Edit applies patch to the folder with id and returns the stored result.
func (r *FolderRepository) Edit(ctx context.Context, id string, patch FolderPatch) (domain.Folder, error) {
	var edited domain.Folder
	err := store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		folders := r.in(tx)
		folder, err := folders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			folder.Name = *patch.Name
		}
		if patch.Color != nil && strings.TrimSpace(*patch.Color) != "" {
			folder.Color = *patch.Color
		}
		if err := folders.Replace(ctx, folder); err != nil {
			return err
		}
		edited, err = folders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Folder{}, err
	}
	return edited, nil
}

// Delete removes the folder with id. Member links are not touched; see
// LinkRepository.DeleteFolder for the cascading variant.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	return store.Atomically(ctx, r.kv, func(tx store.KeyValueStore) error {
		folders, err := loadFolders(ctx, tx)
		if err != nil {
			return err
		}

		filtered := slices.DeleteFunc(slices.Clone(folders), func(f domain.Folder) bool {
			return f.ID == id
		})
		if len(filtered) == len(folders) {
			return domain.FolderNotFound(id)
		}

		return saveFolders(ctx, tx, filtered)
	})
}

func indexOfFolder(folders []domain.Folder, id string) int {
	return slices.IndexFunc(folders, func(f domain.Folder) bool { return f.ID == id })
}

// nameTaken reports whether a folder other than exceptID already uses name.
func nameTaken(folders []domain.Folder, name, exceptID string) bool {
	return slices.ContainsFunc(folders, func(f domain.Folder) bool {
		return f.Name == name && f.ID != exceptID
	})
}
