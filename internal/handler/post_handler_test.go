package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contentboard/internal/apperror"
	"contentboard/internal/models"
	"contentboard/internal/service"
)

func samplePost() *models.PostView {
	return &models.PostView{
		ID:        "p1",
		Title:     "Intro",
		CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		TagIDs:    []string{"t1"},
		Images1:   []string{"a.png"},
		Images2:   []string{},
		Images3:   []string{},
	}
}

func TestCreatePost(t *testing.T) {
	t.Run("image objects become src values", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("CreatePost", mock.Anything, service.CreatePostInput{
			Title:   "Intro",
			TagIDs:  []string{"t1"},
			Images1: []string{"a.png"},
		}).Return(samplePost(), nil)

		rec := serve(env.h.CreatePost, request{
			method: http.MethodPost,
			target: "/api/posts",
			body:   `{"title":"Intro","tagIds":["t1"],"images1":[{"src":"a.png"}]}`,
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{
			"id":"p1","title":"Intro","content1":null,"content2":null,"content3":null,
			"createdAt":"2026-05-01T00:00:00Z",
			"tagIds":["t1"],"images1":["a.png"],"images2":[],"images3":[]
		}`, rec.Body.String())
		env.posts.AssertExpectations(t)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"content1":"x"}`},
		{name: "image without src", body: `{"title":"Intro","images2":[{}]}`},
		{name: "blank tag id", body: `{"title":"Intro","tagIds":[""]}`},
		{name: "malformed json", body: `{"title":`},
		{name: "title longer than the column", body: `{"title":"` + strings.Repeat("a", 256) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rec := serve(env.h.CreatePost, request{method: http.MethodPost, target: "/api/posts", body: tt.body})

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
		})
	}

	t.Run("unknown tag", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("CreatePost", mock.Anything, mock.Anything).Return(nil, apperror.NotFound("Tag t2 not found"))

		rec := serve(env.h.CreatePost, request{method: http.MethodPost, target: "/api/posts", body: `{"title":"Intro","tagIds":["t2"]}`})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Tag t2 not found", errorBody(t, rec))
	})
}

func TestUpdatePost_TitleTooLong(t *testing.T) {
	env := newTestEnv()

	rec := serve(env.h.UpdatePost, request{
		method: http.MethodPatch,
		target: "/api/posts/p1",
		body:   `{"title":"` + strings.Repeat("a", 256) + `"}`,
		vars:   map[string]string{"id": "p1"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.posts.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePost(t *testing.T) {
	t.Run("explicit empty array clears, omitted keys stay nil", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("UpdatePost", mock.Anything, "p1", mock.MatchedBy(func(in service.UpdatePostInput) bool {
			return in.Images1 != nil && len(*in.Images1) == 0 &&
				in.Images2 == nil && in.Images3 == nil &&
				in.TagIDs == nil && in.Title == nil
		})).Return(samplePost(), nil)

		rec := serve(env.h.UpdatePost, request{
			method: http.MethodPatch,
			target: "/api/posts/p1",
			body:   `{"images1":[]}`,
			vars:   map[string]string{"id": "p1"},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		env.posts.AssertExpectations(t)
	})

	t.Run("scalars and tags", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("UpdatePost", mock.Anything, "p1", mock.MatchedBy(func(in service.UpdatePostInput) bool {
			return *in.Title == "New" && *in.Content3 == "c3" &&
				assert.ObjectsAreEqual([]string{"t1", "t2"}, *in.TagIDs) &&
				*in.Images2 != nil && (*in.Images2)[0] == "b.png"
		})).Return(samplePost(), nil)

		rec := serve(env.h.UpdatePost, request{
			method: http.MethodPatch,
			target: "/api/posts/p1",
			body:   `{"title":"New","content3":"c3","tagIds":["t1","t2"],"images2":[{"src":"b.png"}]}`,
			vars:   map[string]string{"id": "p1"},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		env.posts.AssertExpectations(t)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		env := newTestEnv()

		rec := serve(env.h.UpdatePost, request{
			method: http.MethodPatch,
			target: "/api/posts/p1",
			body:   `{"title":""}`,
			vars:   map[string]string{"id": "p1"},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("UpdatePost", mock.Anything, "p9", mock.Anything).Return(nil, apperror.NotFound("Post p9 not found"))

		rec := serve(env.h.UpdatePost, request{
			method: http.MethodPatch,
			target: "/api/posts/p9",
			body:   `{}`,
			vars:   map[string]string{"id": "p9"},
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetPosts(t *testing.T) {
	t.Run("query parameters", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("ListPosts", mock.Anything, mock.MatchedBy(func(in service.ListPostsInput) bool {
			return in.Page == 2 && in.PostsPerPage == 5 && in.Tag != nil && *in.Tag == "nestjs"
		})).Return(&models.PostPage{
			TotalCount: 6,
			Posts:      []models.PostListItem{{ID: "p6", Title: "Last", TagIDs: []string{"t1"}}},
		}, nil)

		rec := serve(env.h.GetPosts, request{method: http.MethodGet, target: "/api/posts?page=2&postsPerPage=5&tag=nestjs"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"totalCount":6,"posts":[{"id":"p6","title":"Last","tagIds":["t1"]}]}`, rec.Body.String())
	})

	t.Run("defaults without filter", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("ListPosts", mock.Anything, service.ListPostsInput{Page: 1, PostsPerPage: 10}).
			Return(&models.PostPage{TotalCount: 1, Posts: []models.PostListItem{{ID: "p1", TagIDs: []string{}}}}, nil)

		rec := serve(env.h.GetPosts, request{method: http.MethodGet, target: "/api/posts"})

		assert.Equal(t, http.StatusOK, rec.Code)
		env.posts.AssertExpectations(t)
	})

	t.Run("non-numeric page", func(t *testing.T) {
		env := newTestEnv()

		rec := serve(env.h.GetPosts, request{method: http.MethodGet, target: "/api/posts?page=abc"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	for _, target := range []string{
		"/api/posts?postsPerPage=101",
		"/api/posts?postsPerPage=9000000000000000000",
		"/api/posts?postsPerPage=99999999999999999999",
	} {
		t.Run("oversized page size", func(t *testing.T) {
			env := newTestEnv()

			rec := serve(env.h.GetPosts, request{method: http.MethodGet, target: target})

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env.posts.AssertNotCalled(t, "ListPosts", mock.Anything, mock.Anything)
		})
	}

	t.Run("empty page", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("ListPosts", mock.Anything, mock.Anything).Return(nil, apperror.NotFound("No posts found"))

		rec := serve(env.h.GetPosts, request{method: http.MethodGet, target: "/api/posts?page=9"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No posts found", errorBody(t, rec))
	})

	t.Run("invalid paging from service", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("ListPosts", mock.Anything, mock.Anything).Return(nil, apperror.Validation("page must be at least 1"))

		rec := serve(env.h.GetPosts, request{method: http.MethodGet, target: "/api/posts?page=0"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetPost(t *testing.T) {
	env := newTestEnv()
	env.posts.On("GetPostByID", mock.Anything, "p1").Return(samplePost(), nil)
	env.posts.On("GetPostByID", mock.Anything, "p2").Return(nil, errors.New("connection reset"))

	rec := serve(env.h.GetPost, request{method: http.MethodGet, target: "/api/posts/p1", vars: map[string]string{"id": "p1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.PostView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"t1"}, got.TagIDs)

	rec = serve(env.h.GetPost, request{method: http.MethodGet, target: "/api/posts/p2", vars: map[string]string{"id": "p2"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorBody(t, rec))
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv()
	env.posts.On("DeletePost", mock.Anything, "p1").Return(nil)
	env.posts.On("DeletePost", mock.Anything, "p2").Return(apperror.NotFound("Post p2 not found"))

	rec := serve(env.h.DeletePost, request{method: http.MethodDelete, target: "/api/posts/p1", vars: map[string]string{"id": "p1"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(env.h.DeletePost, request{method: http.MethodDelete, target: "/api/posts/p2", vars: map[string]string{"id": "p2"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartImage(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="cat.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func TestAttachImage(t *testing.T) {
	upload := func(env *testEnv, gallery, contentType string) *httptest.ResponseRecorder {
		body, formType := multipartImage(t, contentType, []byte("png-data"))
		req := httptest.NewRequest(http.MethodPost, "/api/posts/p1/images/"+gallery, body)
		req.Header.Set("Content-Type", formType)
		req = mux.SetURLVars(req, map[string]string{"id": "p1", "gallery": gallery})

		rec := httptest.NewRecorder()
		env.h.AttachImage(rec, req)
		return rec
	}

	t.Run("uploaded into the named gallery", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("AttachImage", mock.Anything, "p1", models.Gallery2, "cat.png", mock.Anything, int64(len("png-data"))).
			Return(samplePost(), nil)

		rec := upload(env, "2", "image/png")

		assert.Equal(t, http.StatusCreated, rec.Code)
		env.posts.AssertExpectations(t)
	})

	t.Run("unknown gallery", func(t *testing.T) {
		env := newTestEnv()

		rec := upload(env, "9", "image/png")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.posts.AssertNotCalled(t, "AttachImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported type", func(t *testing.T) {
		env := newTestEnv()

		rec := upload(env, "images1", "text/plain")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestEnv()
		env.posts.On("AttachImage", mock.Anything, "p1", models.Gallery1, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperror.NotFound("Post p1 not found"))

		rec := upload(env, "1", "image/jpeg")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
