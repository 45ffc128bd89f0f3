package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Joseda-hg/supertask/internal/model"
)

type CategoryListOptions struct {
	Page  int `url:"page,omitempty"`
	Limit int `url:"limit,omitempty"`
}

var categoryQueryOrder = []string{"page", "limit"}

type CategoryService struct {
	client *Client
}

func (s *CategoryService) List(ctx context.Context, opts CategoryListOptions) (model.Page[model.Category], error) {
	rawQuery, err := encodeQuery(opts, categoryQueryOrder...)
	if err != nil {
		return model.Page[model.Category]{}, fmt.Errorf("encode category query: %w", err)
	}

	var page model.Page[model.Category]
	err = s.client.Do(ctx, http.MethodGet, withQuery("/categories/", rawQuery), nil, &page)
	return page, err
}

func (s *CategoryService) Create(ctx context.Context, input model.CategoryInput) (model.Category, error) {
	var category model.Category
	err := s.client.Do(ctx, http.MethodPost, "/categories/", input, &category)
	return category, err
}

func (s *CategoryService) Get(ctx context.Context, id int64) (model.Category, error) {
	var category model.Category
	err := s.client.Do(ctx, http.MethodGet, categoryPath(id), nil, &category)
	return category, err
}

func (s *CategoryService) Update(ctx context.Context, id int64, input model.CategoryInput) (model.Category, error) {
	var category model.Category
	err := s.client.Do(ctx, http.MethodPut, categoryPath(id), input, &category)
	return category, err
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.client.Do(ctx, http.MethodDelete, categoryPath(id), nil, nil)
}

func categoryPath(id int64) string {
	return fmt.Sprintf("/categories/%d/", id)
}
