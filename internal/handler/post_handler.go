package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"contentboard/internal/models"
	"contentboard/internal/service"
)

const (
	defaultPage         = 1
	defaultPostsPerPage = 10
)

type ImageRequest struct {
	Src string `json:"src" validate:"required"`
}

type CreatePostRequest struct {
	Title    string         `json:"title" validate:"required,max=255"`
	Content1 *string        `json:"content1"`
	Content2 *string        `json:"content2"`
	Content3 *string        `json:"content3"`
	TagIDs   []string       `json:"tagIds" validate:"omitempty,dive,required"`
	Images1  []ImageRequest `json:"images1" validate:"omitempty,dive"`
	Images2  []ImageRequest `json:"images2" validate:"omitempty,dive"`
	Images3  []ImageRequest `json:"images3" validate:"omitempty,dive"`
}

// UpdatePostRequest tells an omitted key (nil) from an explicit empty array,
// which clears the collection.
type UpdatePostRequest struct {
	Title    *string         `json:"title" validate:"omitempty,min=1,max=255"`
	Content1 *string         `json:"content1"`
	Content2 *string         `json:"content2"`
	Content3 *string         `json:"content3"`
	TagIDs   *[]string       `json:"tagIds" validate:"omitempty,dive,required"`
	Images1  *[]ImageRequest `json:"images1" validate:"omitempty,dive"`
	Images2  *[]ImageRequest `json:"images2" validate:"omitempty,dive"`
	Images3  *[]ImageRequest `json:"images3" validate:"omitempty,dive"`
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func imageSrcs(images []ImageRequest) []string {
	if images == nil {
		return nil
	}
	srcs := make([]string, len(images))
	for i, img := range images {
		srcs[i] = img.Src
	}
	return srcs
}

func optionalSrcs(images *[]ImageRequest) *[]string {
	if images == nil {
		return nil
	}
	srcs := imageSrcs(*images)
	if srcs == nil {
		srcs = []string{}
	}
	return &srcs
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), service.CreatePostInput{
		Title:    req.Title,
		Content1: req.Content1,
		Content2: req.Content2,
		Content3: req.Content3,
		TagIDs:   req.TagIDs,
		Images1:  imageSrcs(req.Images1),
		Images2:  imageSrcs(req.Images2),
		Images3:  imageSrcs(req.Images3),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, post, http.StatusCreated)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPostByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.PostService.UpdatePost(r.Context(), mux.Vars(r)["id"], service.UpdatePostInput{
		Title:    req.Title,
		Content1: req.Content1,
		Content2: req.Content2,
		Content3: req.Content3,
		TagIDs:   req.TagIDs,
		Images1:  optionalSrcs(req.Images1),
		Images2:  optionalSrcs(req.Images2),
		Images3:  optionalSrcs(req.Images3),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.PostService.DeletePost(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPosts serves /api/posts?page=&postsPerPage=&tag=.
func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := intQuery(query.Get("page"), defaultPage)
	if err != nil {
		WriteError(w, "page must be an integer", http.StatusBadRequest)
		return
	}
	postsPerPage, err := intQuery(query.Get("postsPerPage"), defaultPostsPerPage)
	if err != nil {
		WriteError(w, "postsPerPage must be an integer", http.StatusBadRequest)
		return
	}
	if postsPerPage > service.MaxPostsPerPage {
		WriteError(w, fmt.Sprintf("postsPerPage must be at most %d", service.MaxPostsPerPage), http.StatusBadRequest)
		return
	}

	in := service.ListPostsInput{Page: page, PostsPerPage: postsPerPage}
	if tag := query.Get("tag"); tag != "" {
		in.Tag = &tag
	}

	result, err := h.PostService.ListPosts(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, result, http.StatusOK)
}

// AttachImage accepts a multipart "image" file and appends it to the
// gallery named in the path.
func (h *Handlers) AttachImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	gallery, err := models.ParseGallery(vars["gallery"])
	if err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// setting the size limit from the config
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		WriteError(w, fmt.Sprintf("File is too large or malformed (max %d MB)",
			h.Cfg.MaxUploadSize/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, "Failed to read the image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !allowedImageTypes[header.Header.Get("Content-Type")] {
		WriteError(w, "Unsupported file type. Allowed: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
		return
	}

	post, err := h.PostService.AttachImage(r.Context(), vars["id"], gallery, header.Filename, file, header.Size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, post, http.StatusCreated)
}

func intQuery(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
