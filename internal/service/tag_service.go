package service

import (
	"context"
	"strings"

	"contentboard/internal/actor"
	"contentboard/internal/apperror"
	"contentboard/internal/logger"
	"contentboard/internal/models"
	"contentboard/internal/repository"
)

type TagService interface {
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	GetTag(ctx context.Context, tagID string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	UpdateTag(ctx context.Context, tagID, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, tagID string) error
}

type tagService struct {
	tagRepo repository.TagRepository
	log     *logger.Logger
}

func NewTagService(tagRepo repository.TagRepository, log *logger.Logger) TagService {
	return &tagService{tagRepo: tagRepo, log: log}
}

func (s *tagService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.Validation("tag name is required")
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.log.Info("tag created", append(actor.LogFields(ctx), "tag_id", tag.TagID, "name", tag.Name)...)
	return tag, nil
}

func (s *tagService) GetTag(ctx context.Context, tagID string) (*models.Tag, error) {
	return s.tagRepo.GetByID(ctx, tagID)
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *tagService) UpdateTag(ctx context.Context, tagID, name string) (*models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.Validation("tag name is required")
	}

	tag := &models.Tag{TagID: tagID, Name: name}
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}

	s.log.Info("tag renamed", append(actor.LogFields(ctx), "tag_id", tagID, "name", name)...)
	return tag, nil
}

// DeleteTag removes the tag. Posts tagged with it keep existing and lose
// only the association.
func (s *tagService) DeleteTag(ctx context.Context, tagID string) error {
	if err := s.tagRepo.Delete(ctx, tagID); err != nil {
		return err
	}

	s.log.Info("tag deleted", append(actor.LogFields(ctx), "tag_id", tagID)...)
	return nil
}
