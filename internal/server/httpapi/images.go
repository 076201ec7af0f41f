package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/filex"
	"github.com/dmitrijs2005/imagevault/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	maxFieldSize = 4 << 10
	sniffLen     = 512
)

func (s *HTTPServer) uploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := identityFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)

	form, err := s.readUploadForm(r)
	if form != nil && form.spool != nil {
		defer func() {
			if rerr := form.spool.Remove(); rerr != nil {
				s.logger.Warn(ctx, "spool cleanup failed", "path", form.spool.Path, "error", rerr.Error())
			}
		}()
	}
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeFail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", mbe.Limit))
			return
		}
		s.writeError(w, r, err)
		return
	}

	in := services.UploadInput{Name: form.name, FolderID: form.folderID}
	if form.spool != nil {
		f, err := form.spool.Open()
		if err != nil {
			s.writeError(w, r, fmt.Errorf("open spool: %w", err))
			return
		}
		defer f.Close()

		ct, err := sniffContentType(f)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in.File = &services.UploadFile{Body: f, Size: form.spool.Size, ContentType: ct, Filename: form.filename}
	}

	img, err := s.images.Upload(ctx, id.UserID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, img, "Image uploaded successfully")
}

type uploadForm struct {
	name     string
	folderID string
	filename string
	spool    *filex.SpoolFile
}

// readUploadForm streams the multipart body. The first "image" (or "file")
// part is spooled to disk; the caller owns the returned spool file even when
// an error is returned.
func (s *HTTPServer) readUploadForm(r *http.Request) (*uploadForm, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, common.NewValidationError("multipart/form-data body expected")
	}

	dir, err := filex.EnsureSubdDir(s.config.SpoolDir)
	if err != nil {
		return nil, err
	}

	form := &uploadForm{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return form, nil
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return form, err
			}
			return form, common.NewValidationError("malformed multipart body")
		}

		switch part.FormName() {
		case "name", "folderId":
			b, err := io.ReadAll(io.LimitReader(part, maxFieldSize+1))
			if err != nil {
				part.Close()
				return form, err
			}
			if len(b) > maxFieldSize {
				part.Close()
				return form, common.NewValidationError(fmt.Sprintf("%s exceeds %d bytes", part.FormName(), maxFieldSize))
			}
			if part.FormName() == "name" {
				form.name = string(b)
			} else {
				form.folderID = strings.TrimSpace(string(b))
			}
		case "image", "file":
			if form.spool != nil || part.FileName() == "" {
				break
			}
			sp, err := filex.Spool(dir, part)
			if err != nil {
				part.Close()
				return form, err
			}
			form.spool = sp
			form.filename = part.FileName()
		}
		part.Close()
	}
}

func sniffContentType(f io.ReadSeeker) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("sniff: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

func (s *HTTPServer) searchImages(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	q := r.URL.Query().Get("query")

	list, err := s.images.Search(r.Context(), id.UserID, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, list, fmt.Sprintf("Found %d images matching %q", len(list), strings.TrimSpace(q)))
}

func (s *HTTPServer) listFolderImages(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	list, err := s.images.ListByFolder(r.Context(), id.UserID, chi.URLParam(r, "folderId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, list, "Images retrieved successfully")
}

func (s *HTTPServer) listAllImages(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	page, err := queryInt(r, "page", services.DefaultPage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", services.DefaultLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.images.ListAll(r.Context(), id.UserID, page, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, res, "Images retrieved successfully")
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, common.NewValidationError(key + " must be an integer")
	}
	return n, nil
}

func (s *HTTPServer) getImage(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	img, err := s.images.GetByID(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, img, "Image retrieved successfully")
}

func (s *HTTPServer) updateImage(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	img, err := s.images.Update(r.Context(), id.UserID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, img, "Image updated successfully")
}

func (s *HTTPServer) deleteImage(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if err := s.images.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, nil, "Image deleted successfully")
}
