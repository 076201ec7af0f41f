package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *HTTPServer) createFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req createFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	f, err := s.folders.Create(r.Context(), id.UserID, req.Name, req.ParentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, f, "Folder created successfully")
}

func (s *HTTPServer) listFolders(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	list, err := s.folders.ListByParent(r.Context(), id.UserID, chi.URLParam(r, "parentId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, list, "Folders retrieved successfully")
}

func (s *HTTPServer) getFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	f, err := s.folders.GetByID(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, f, "Folder retrieved successfully")
}

func (s *HTTPServer) updateFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.folders.Update(r.Context(), id.UserID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, f, "Folder updated successfully")
}

func (s *HTTPServer) deleteFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if err := s.folders.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil, "Folder deleted successfully")
}
