package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"contentboard/internal/actor"
	"contentboard/internal/apperror"
	"contentboard/internal/logger"
	"contentboard/internal/models"
	"contentboard/internal/repository"
	"contentboard/internal/storage"
)

type CreatePostInput struct {
	Title    string
	Content1 *string
	Content2 *string
	Content3 *string
	TagIDs   []string
	Images1  []string
	Images2  []string
	Images3  []string
}

func (in CreatePostInput) images(g models.Gallery) []string {
	switch g {
	case models.Gallery1:
		return in.Images1
	case models.Gallery2:
		return in.Images2
	case models.Gallery3:
		return in.Images3
	}
	return nil
}

// UpdatePostInput is a partial update. A nil field is left untouched. For
// the relation fields a non-nil pointer replaces the whole collection, so a
// pointer to an empty slice clears it.
type UpdatePostInput struct {
	Title    *string
	Content1 *string
	Content2 *string
	Content3 *string
	TagIDs   *[]string
	Images1  *[]string
	Images2  *[]string
	Images3  *[]string
}

func (in UpdatePostInput) images(g models.Gallery) *[]string {
	switch g {
	case models.Gallery1:
		return in.Images1
	case models.Gallery2:
		return in.Images2
	case models.Gallery3:
		return in.Images3
	}
	return nil
}

func (in UpdatePostInput) hasScalars() bool {
	return in.Title != nil || in.Content1 != nil || in.Content2 != nil || in.Content3 != nil
}

const (
	// MaxTitleLength matches the posts.title column.
	MaxTitleLength  = 255
	MaxPostsPerPage = 100
)

type ListPostsInput struct {
	Page         int
	PostsPerPage int
	Tag          *string
}

type PostService interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error)
	GetPostByID(ctx context.Context, postID string) (*models.PostView, error)
	UpdatePost(ctx context.Context, postID string, in UpdatePostInput) (*models.PostView, error)
	DeletePost(ctx context.Context, postID string) error
	ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error)
	AttachImage(ctx context.Context, postID string, gallery models.Gallery, fileName string, file io.Reader, size int64) (*models.PostView, error)
}

type postService struct {
	tx        Transactor
	postRepo  repository.PostRepository
	tagRepo   repository.TagRepository
	postTags  repository.ChildRepository
	galleries map[models.Gallery]repository.ChildRepository
	storage   storage.Storage
	log       *logger.Logger
}

func NewPostService(
	tx Transactor,
	postRepo repository.PostRepository,
	tagRepo repository.TagRepository,
	postTags repository.ChildRepository,
	galleries map[models.Gallery]repository.ChildRepository,
	storage storage.Storage,
	log *logger.Logger,
) PostService {
	return &postService{
		tx:        tx,
		postRepo:  postRepo,
		tagRepo:   tagRepo,
		postTags:  postTags,
		galleries: galleries,
		storage:   storage,
		log:       log,
	}
}

func (p *postService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.Validation("title is required")
	}
	if err := checkTitleLength(in.Title); err != nil {
		return nil, err
	}

	tagIDs := uniqueIDs(in.TagIDs)
	post := &models.Post{
		Title:    in.Title,
		Content1: in.Content1,
		Content2: in.Content2,
		Content3: in.Content3,
	}

	err := p.tx.WithTx(ctx, func(ctx context.Context) error {
		// every tag must exist before the first row is written
		if err := p.ensureTagsExist(ctx, tagIDs); err != nil {
			return err
		}

		if err := p.postRepo.Create(ctx, post); err != nil {
			return err
		}

		if len(tagIDs) > 0 {
			if err := p.postTags.Replace(ctx, post.PostID, tagIDs); err != nil {
				return err
			}
		}

		for _, g := range models.Galleries {
			if srcs := in.images(g); len(srcs) > 0 {
				if err := p.galleries[g].Replace(ctx, post.PostID, srcs); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := newPostView(post)
	view.TagIDs = tagIDs
	for _, g := range models.Galleries {
		view.SetImages(g, copyOrEmpty(in.images(g)))
	}

	p.log.Info("post created", append(actor.LogFields(ctx), "post_id", post.PostID, "tags", len(tagIDs))...)
	return view, nil
}

func (p *postService) GetPostByID(ctx context.Context, postID string) (*models.PostView, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return p.loadView(ctx, post)
}

func (p *postService) UpdatePost(ctx context.Context, postID string, in UpdatePostInput) (*models.PostView, error) {
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperror.Validation("title must not be empty")
		}
		if err := checkTitleLength(*in.Title); err != nil {
			return nil, err
		}
	}

	var view *models.PostView
	err := p.tx.WithTx(ctx, func(ctx context.Context) error {
		post, err := p.postRepo.GetByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}

		if in.hasScalars() {
			applyScalars(post, in)
			if err := p.postRepo.Update(ctx, post); err != nil {
				return err
			}
		}

		if in.TagIDs != nil {
			tagIDs := uniqueIDs(*in.TagIDs)
			if err := p.ensureTagsExist(ctx, tagIDs); err != nil {
				return err
			}
			if err := p.postTags.Replace(ctx, postID, tagIDs); err != nil {
				return err
			}
		}

		for _, g := range models.Galleries {
			if srcs := in.images(g); srcs != nil {
				if err := p.galleries[g].Replace(ctx, postID, *srcs); err != nil {
					return err
				}
			}
		}

		view, err = p.loadView(ctx, post)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.log.Info("post updated", append(actor.LogFields(ctx), "post_id", postID)...)
	return view, nil
}

// DeletePost removes the post row. Its tag links and gallery rows are
// removed by the storage cascade, not here.
func (p *postService) DeletePost(ctx context.Context, postID string) error {
	err := p.tx.WithTx(ctx, func(ctx context.Context) error {
		return p.postRepo.Delete(ctx, postID)
	})
	if err != nil {
		return err
	}

	p.log.Info("post deleted", append(actor.LogFields(ctx), "post_id", postID)...)
	return nil
}

// ListPosts returns one page, newest first. An empty page is reported as
// NotFound rather than an empty list; clients rely on that. The count and
// the page are read from one snapshot.
func (p *postService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	if in.Page < 1 {
		return nil, apperror.Validation("page must be at least 1")
	}
	if in.PostsPerPage < 1 || in.PostsPerPage > MaxPostsPerPage {
		return nil, apperror.Validation("postsPerPage must be between 1 and %d", MaxPostsPerPage)
	}
	// an offset past math.MaxInt is past any table
	if in.Page-1 > math.MaxInt/in.PostsPerPage {
		return nil, apperror.NotFound("No posts found")
	}
	offset := (in.Page - 1) * in.PostsPerPage

	var page *models.PostPage
	err := p.tx.WithReadTx(ctx, func(ctx context.Context) error {
		var tagIDs []string
		if in.Tag != nil {
			ids, err := p.tagRepo.FindIDsByName(ctx, *in.Tag)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return apperror.NotFound("Tag not found")
			}
			tagIDs = ids
		}

		total, err := p.postRepo.Count(ctx, tagIDs)
		if err != nil {
			return err
		}

		posts, err := p.postRepo.ListPage(ctx, tagIDs, in.PostsPerPage, offset)
		if err != nil {
			return err
		}

		if len(posts) == 0 {
			return apperror.NotFound("No posts found")
		}

		postIDs := make([]string, len(posts))
		for i, post := range posts {
			postIDs[i] = post.ID
		}

		tagsByPost, err := p.postTags.ListByPostIDs(ctx, postIDs)
		if err != nil {
			return err
		}

		for i := range posts {
			posts[i].TagIDs = copyOrEmpty(tagsByPost[posts[i].ID])
		}

		page = &models.PostPage{TotalCount: total, Posts: posts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// AttachImage uploads file to object storage and appends its URL to the
// given gallery of the post.
func (p *postService) AttachImage(ctx context.Context, postID string, gallery models.Gallery, fileName string, file io.Reader, size int64) (*models.PostView, error) {
	if !gallery.Valid() {
		return nil, apperror.Validation("unknown gallery %d", int(gallery))
	}
	if p.storage == nil {
		return nil, errors.New("image storage is not configured")
	}

	if _, err := p.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	objectName, imageURL, err := p.storage.UploadImage(ctx, postID, fileName, file, size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	// the post lock orders concurrent appends to one gallery
	err = p.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := p.postRepo.GetByIDForUpdate(ctx, postID); err != nil {
			return err
		}
		return p.galleries[gallery].Append(ctx, postID, imageURL)
	})
	if err != nil {
		if delErr := p.storage.DeleteImage(ctx, objectName); delErr != nil {
			p.log.Warn("failed to remove orphaned upload", "object", objectName, "error", delErr)
		}
		return nil, err
	}

	p.log.Info("image attached", append(actor.LogFields(ctx), "post_id", postID, "gallery", gallery.String(), "object", objectName)...)
	return p.GetPostByID(ctx, postID)
}

func checkTitleLength(title string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperror.Validation("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}

func (p *postService) ensureTagsExist(ctx context.Context, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	existing, err := p.tagRepo.ExistingIDs(ctx, tagIDs)
	if err != nil {
		return err
	}

	found := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}

	for _, id := range tagIDs {
		if _, ok := found[id]; !ok {
			return apperror.NotFound("Tag %s not found", id)
		}
	}
	return nil
}

func (p *postService) loadView(ctx context.Context, post *models.Post) (*models.PostView, error) {
	view := newPostView(post)

	tagIDs, err := p.postTags.ListByPostID(ctx, post.PostID)
	if err != nil {
		return nil, err
	}
	view.TagIDs = copyOrEmpty(tagIDs)

	for _, g := range models.Galleries {
		srcs, err := p.galleries[g].ListByPostID(ctx, post.PostID)
		if err != nil {
			return nil, err
		}
		view.SetImages(g, copyOrEmpty(srcs))
	}

	return view, nil
}

func newPostView(post *models.Post) *models.PostView {
	return &models.PostView{
		ID:        post.PostID,
		Title:     post.Title,
		Content1:  post.Content1,
		Content2:  post.Content2,
		Content3:  post.Content3,
		CreatedAt: post.CreatedAt,
	}
}

func applyScalars(post *models.Post, in UpdatePostInput) {
	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content1 != nil {
		post.Content1 = in.Content1
	}
	if in.Content2 != nil {
		post.Content2 = in.Content2
	}
	if in.Content3 != nil {
		post.Content3 = in.Content3
	}
}

// uniqueIDs drops repeated ids, keeping the first occurrence.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func copyOrEmpty(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
