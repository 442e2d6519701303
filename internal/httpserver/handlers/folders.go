package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/repository"
)

type folderRequest struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Parent string `json:"parent"`
}

type folderPatchRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type foldersResponse struct {
	Folders []domain.Folder `json:"folders"`
	Count   int             `json:"count"`
}

type folderDeletedResponse struct {
	Unfiled int `json:"unfiled"`
}

func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders := d.Service.Folders()
		writeJSON(w, http.StatusOK, foldersResponse{Folders: folders, Count: len(folders)})
	}
}

func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		folder, err := d.Service.CreateFolder(r.Context(), repository.CreateFolderInput{
			Name:   req.Name,
			Color:  req.Color,
			Parent: req.Parent,
		})
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, folder)
	}
}

func GetFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folder, err := d.Service.Folder(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, folder)
	}
}

// EditFolder renames or recolors a folder. Omitted fields are kept.
func EditFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderPatchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		folder, err := d.Service.EditFolder(r.Context(), chi.URLParam(r, "id"), repository.FolderPatch{
			Name:  req.Name,
			Color: req.Color,
		})
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, folder)
	}
}

// DeleteFolder removes a folder and unfiles its links.
func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Service.DeleteFolder(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, folderDeletedResponse{Unfiled: n})
	}
}
