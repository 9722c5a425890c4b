// Package dashboard handles the small per-SKU annotation documents shown on
// the dashboard: free-text comments and the hidden-SKU list.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/shared"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
)

// Blob keys for the dashboard documents
const (
	CommentsDocumentKey   = "sku_comments"
	HiddenSKUsDocumentKey = "hidden_skus"
)

// Comment is one per-SKU annotation
type Comment struct {
	SKU       string    `json:"sku"`
	Text      string    `json:"text"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

type commentsDocument struct {
	Version  int64              `json:"version"`
	Comments map[string]Comment `json:"comments"`
}

type hiddenDocument struct {
	Version int64    `json:"version"`
	SKUs    []string `json:"skus"`
}

// Service reads and writes the dashboard annotation documents
type Service struct {
	docs   *storage.DocumentStore
	logger *zap.Logger
}

// NewService creates a dashboard service
func NewService(docs *storage.DocumentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, logger: logger}
}

func (s *Service) loadComments(ctx context.Context) (*commentsDocument, error) {
	doc := &commentsDocument{}
	err := s.docs.Load(ctx, CommentsDocumentKey, doc)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return &commentsDocument{Comments: make(map[string]Comment)}, nil
		}
		return nil, err
	}
	if doc.Comments == nil {
		doc.Comments = make(map[string]Comment)
	}
	return doc, nil
}

// ListComments returns all comments sorted by SKU
func (s *Service) ListComments(ctx context.Context) ([]Comment, error) {
	doc, err := s.loadComments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Comment, 0, len(doc.Comments))
	for _, c := range doc.Comments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

// UpsertComment sets the comment for a SKU
func (s *Service) UpsertComment(ctx context.Context, sku, text, actor string) (*Comment, error) {
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU cannot be empty")
	}
	if text == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Comment text cannot be empty")
	}

	doc, err := s.loadComments(ctx)
	if err != nil {
		return nil, err
	}

	comment := Comment{SKU: sku, Text: text, UpdatedBy: actor, UpdatedAt: time.Now()}
	doc.Comments[sku] = comment
	doc.Version++

	if err := s.docs.Save(ctx, CommentsDocumentKey, doc); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes the comment for a SKU. Unknown SKU is NOT_FOUND.
func (s *Service) DeleteComment(ctx context.Context, sku string) error {
	doc, err := s.loadComments(ctx)
	if err != nil {
		return err
	}
	if _, ok := doc.Comments[sku]; !ok {
		return shared.ErrNotFound
	}
	delete(doc.Comments, sku)
	doc.Version++
	return s.docs.Save(ctx, CommentsDocumentKey, doc)
}

// HiddenSKUs returns the hidden-SKU list, sorted
func (s *Service) HiddenSKUs(ctx context.Context) ([]string, error) {
	doc := &hiddenDocument{}
	err := s.docs.Load(ctx, HiddenSKUsDocumentKey, doc)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	if doc.SKUs == nil {
		doc.SKUs = []string{}
	}
	sort.Strings(doc.SKUs)
	return doc.SKUs, nil
}

// SetHiddenSKUs replaces the hidden-SKU list, deduplicating entries
func (s *Service) SetHiddenSKUs(ctx context.Context, skus []string) ([]string, error) {
	seen := make(map[string]bool, len(skus))
	deduped := make([]string, 0, len(skus))
	for _, sku := range skus {
		if sku == "" || seen[sku] {
			continue
		}
		seen[sku] = true
		deduped = append(deduped, sku)
	}
	sort.Strings(deduped)

	doc := &hiddenDocument{}
	err := s.docs.Load(ctx, HiddenSKUsDocumentKey, doc)
	if err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		return nil, err
	}
	doc.SKUs = deduped
	doc.Version++

	if err := s.docs.Save(ctx, HiddenSKUsDocumentKey, doc); err != nil {
		return nil, err
	}
	return deduped, nil
}
