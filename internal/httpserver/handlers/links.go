package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/repository"
)

type linkRequest struct {
	URL       string          `json:"url"`
	Title     string          `json:"title"`
	Type      domain.LinkType `json:"type"`
	Tags      []string        `json:"tags"`
	Memo      string          `json:"memo"`
	Thumbnail string          `json:"thumbnail"`
	Folder    string          `json:"folder"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type linksResponse struct {
	Links []domain.Link `json:"links"`
	Count int           `json:"count"`
}

// ListLinks returns visible links, or the visible links of ?folder=.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folderID := r.URL.Query().Get("folder")
		if folderID != "" {
			if _, err := d.Service.Folder(folderID); err != nil {
				writeError(w, r, d.Logger, err)
				return
			}
		}
		links := d.Service.Links(folderID)
		writeJSON(w, http.StatusOK, linksResponse{Links: links, Count: len(links)})
	}
}

func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req linkRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		link, err := d.Service.CreateLink(r.Context(), repository.CreateLinkInput{
			URL:       req.URL,
			Title:     req.Title,
			Type:      req.Type,
			Tags:      req.Tags,
			Memo:      req.Memo,
			Thumbnail: req.Thumbnail,
			Folder:    req.Folder,
		})
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, link)
	}
}

func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := d.Service.Link(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

// UpdateLink replaces the link named in the path with the body. Moving a
// link between folders is done by changing its "folder" field.
func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var link domain.Link
		if err := decodeJSON(r, &link); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		link.ID = chi.URLParam(r, "id")

		updated, err := d.Service.UpdateLink(r.Context(), link)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// SetLinkStatus archives, restores or soft-deletes a link.
func SetLinkStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		updated, err := d.Service.SetLinkStatus(r.Context(), chi.URLParam(r, "id"), status)
		if err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteLink removes a link for good. Use SetLinkStatus for soft deletes.
func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Service.DeleteLink(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
