package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// Action is a membership change applied to a folder's link list.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Synchronizer is the only code that edits Folder.Links in response to link
// writes. It keeps Link.Folder and Folder.Links pointing at each other.
type Synchronizer struct {
	folders *FolderRepository
}

// NewSynchronizer creates a synchronizer writing through folders.
func NewSynchronizer(folders *FolderRepository) *Synchronizer {
	return &Synchronizer{folders: folders}
}

// Sync adds or removes linkID in the folder's membership list.
//
// An empty folderID is a no-op, and so is a folder that no longer exists:
// the link write that triggered us has already happened and failing here
// would only make it look like it had not. Both actions are idempotent.
func (s *Synchronizer) Sync(ctx context.Context, folderID, linkID string, action Action) error {
	if folderID == "" {
		return nil
	}

	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	switch action {
	case ActionAdd:
		if !slices.Contains(folder.Links, linkID) {
			folder.Links = append(folder.Links, linkID)
		}
	case ActionRemove:
		folder.Links = slices.DeleteFunc(folder.Links, func(id string) bool { return id == linkID })
	}

	return s.folders.Upsert(ctx, folder)
}

// Reconcile moves linkID from oldFolderID to newFolderID after a link update.
//
// When the folder is unchanged it only makes sure the link is listed (this
// also repairs a link that was filed while other fields changed). Otherwise
// the removal and the addition are two independent Sync calls, since either
// folder may be gone on its own.
func (s *Synchronizer) Reconcile(ctx context.Context, linkID, oldFolderID, newFolderID string) error {
	if oldFolderID == newFolderID {
		return s.Sync(ctx, newFolderID, linkID, ActionAdd)
	}
	if err := s.Sync(ctx, oldFolderID, linkID, ActionRemove); err != nil {
		return err
	}
	return s.Sync(ctx, newFolderID, linkID, ActionAdd)
}
