package services

import (
	"context"
	"errors"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"shopfront/internal/apperror"
	"shopfront/internal/models"
	"shopfront/internal/repositories"
	"shopfront/pkg/rabbitmq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const anonymousReviewer = "Anonymous"

// ImageUpload is an image attached to a review submission.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AddReviewInput carries a review submission. Rating and Comment are both
// optional but at least one must be present.
type AddReviewInput struct {
	UserID    string
	ProductID string
	OrderID   string
	Rating    *int
	Comment   string
	Image     *ImageUpload
}

// ReviewEvent is the payload of review.created.
type ReviewEvent struct {
	ReviewID  string `json:"reviewId"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId,omitempty"`
	Rating    *int   `json:"rating,omitempty"`
}

// ReviewService handles review submission, listing and review eligibility.
type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	orderRepo  repositories.OrderRepository
	userRepo   repositories.UserRepository
	uploader   ImageUploader
	cache      JSONCache
	cacheTTL   time.Duration
	events     EventPublisher
	log        *zap.Logger
}

// NewReviewService creates a new ReviewService. uploader, cache and events may be nil.
func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	uploader ImageUploader,
	cache JSONCache,
	cacheTTL time.Duration,
	events EventPublisher,
	log *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		uploader:   uploader,
		cache:      cache,
		cacheTTL:   cacheTTL,
		events:     events,
		log:        log,
	}
}

// AddReview validates and stores a review. A second review by the same user
// for the same product is a Conflict whatever the order id. The order
// reference is only recorded when the order is the user's, delivered, and
// contains the product.
func (s *ReviewService) AddReview(ctx context.Context, input AddReviewInput) (*models.PublicReview, error) {
	comment := strings.TrimSpace(input.Comment)
	if input.ProductID == "" {
		return nil, apperror.Validation("Product ID is required")
	}
	if input.Rating == nil && comment == "" {
		return nil, apperror.Validation("Please provide a rating or comment")
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, apperror.Validation("Rating must be between 1 and 5")
	}

	_, err := s.reviewRepo.GetByUserAndProduct(ctx, input.UserID, input.ProductID)
	switch {
	case err == nil:
		return nil, apperror.Conflict("You have already reviewed this product")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperror.Internal("Failed to check existing reviews", err)
	}

	review := &models.Review{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   comment,
	}
	if input.OrderID != "" && s.deliveredOrderContains(ctx, input.UserID, input.OrderID, input.ProductID) {
		review.OrderID = input.OrderID
	}

	if input.Image != nil {
		image, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		review.Image = image
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Conflict("You have already reviewed this product")
		}
		return nil, apperror.Internal("Failed to save review", err)
	}

	s.log.Info("review added",
		zap.String("review_id", review.ID),
		zap.String("user_id", review.UserID),
		zap.String("product_id", review.ProductID),
		zap.Bool("order_linked", review.OrderID != ""))

	s.bumpRevision(ctx, review.ProductID)
	if s.events != nil {
		event := ReviewEvent{
			ReviewID:  review.ID,
			UserID:    review.UserID,
			ProductID: review.ProductID,
			OrderID:   review.OrderID,
			Rating:    review.Rating,
		}
		if err := s.events.Publish(ctx, rabbitmq.RoutingReviewCreated, event); err != nil {
			s.log.Warn("failed to publish event", zap.String("routing_key", rabbitmq.RoutingReviewCreated), zap.Error(err))
		}
	}

	return &models.PublicReview{
		ID:        review.ID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Image:     review.Image,
		CreatedAt: review.CreatedAt,
	}, nil
}

func (s *ReviewService) deliveredOrderContains(ctx context.Context, userID, orderID, productID string) bool {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("failed to load order for review", zap.String("order_id", orderID), zap.Error(err))
		}
		return false
	}
	if order.UserID != userID || order.Status != models.StatusDelivered {
		return false
	}
	_, ok := order.FindItem(productID)
	return ok
}

func (s *ReviewService) uploadImage(ctx context.Context, img *ImageUpload) (*models.ReviewImage, error) {
	if s.uploader == nil {
		return nil, apperror.UploadFailure("Image uploads are not available", nil)
	}

	key := "reviews/" + uuid.New().String() + strings.ToLower(filepath.Ext(img.Filename))
	obj, err := s.uploader.Upload(ctx, key, img.ContentType, img.Body, img.Size)
	if err != nil {
		s.log.Error("review image upload failed", zap.String("key", key), zap.Error(err))
		return nil, apperror.UploadFailure("Failed to upload image", err)
	}
	return &models.ReviewImage{PublicID: obj.Key, URL: obj.URL}, nil
}

// ListReviewsForProduct returns the product's reviews newest first with the
// reviewer's name, the review count and the average of rated reviews rounded
// to one decimal place.
func (s *ReviewService) ListReviewsForProduct(ctx context.Context, productID string) (*models.ProductReviewSummary, error) {
	if productID == "" {
		return nil, apperror.Validation("Product ID is required")
	}

	var cacheKey string
	if s.cache != nil {
		key, err := s.summaryKey(ctx, productID)
		if err != nil {
			s.log.Warn("review cache read failed", zap.String("product_id", productID), zap.Error(err))
		} else {
			cacheKey = key
			var cached models.ProductReviewSummary
			hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
			if err != nil {
				s.log.Warn("review cache read failed", zap.String("product_id", productID), zap.Error(err))
			} else if hit {
				return &cached, nil
			}
		}
	}

	reviews, err := s.reviewRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, apperror.Internal("Failed to load reviews", err)
	}

	names, err := s.reviewerNames(ctx, reviews)
	if err != nil {
		return nil, err
	}

	summary := &models.ProductReviewSummary{
		Reviews:       make([]models.ProductReview, 0, len(reviews)),
		TotalReviews:  len(reviews),
		AverageRating: AverageRating(reviews),
	}
	for _, r := range reviews {
		name, ok := names[r.UserID]
		if !ok {
			name = anonymousReviewer
		}
		var comment *string
		if r.Comment != "" {
			c := r.Comment
			comment = &c
		}
		summary.Reviews = append(summary.Reviews, models.ProductReview{
			ID:        r.ID,
			UserName:  name,
			Rating:    r.Rating,
			Comment:   comment,
			Image:     r.Image,
			CreatedAt: r.CreatedAt,
		})
	}

	if cacheKey != "" {
		if err := s.cache.SetJSON(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.log.Warn("review cache write failed", zap.String("product_id", productID), zap.Error(err))
		}
	}
	return summary, nil
}

func (s *ReviewService) reviewerNames(ctx context.Context, reviews []models.Review) (map[string]string, error) {
	seen := make(map[string]struct{}, len(reviews))
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Failed to load reviewers", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// AverageRating is the mean of the rated reviews rounded to one decimal
// place, or 0 when none carries a rating.
func AverageRating(reviews []models.Review) float64 {
	var sum, count int
	for i := range reviews {
		if reviews[i].HasRating() {
			sum += *reviews[i].Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// EligibleProducts lists the items of the user's delivered orders whose
// product the user has not reviewed yet, most recently updated order first.
func (s *ReviewService) EligibleProducts(ctx context.Context, userID string) ([]models.EligibleProduct, error) {
	orders, err := s.orderRepo.GetByUserAndStatus(ctx, userID, models.StatusDelivered)
	if err != nil {
		return nil, apperror.Internal("Failed to load delivered orders", err)
	}

	reviewed, err := reviewedProducts(ctx, s.reviewRepo, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool { return orders[i].UpdatedAt.After(orders[j].UpdatedAt) })

	eligible := make([]models.EligibleProduct, 0)
	for _, order := range orders {
		for _, item := range order.Items {
			if _, done := reviewed[item.ProductID]; done {
				continue
			}
			var image string
			if len(item.Image) > 0 {
				image = item.Image[0]
			}
			eligible = append(eligible, models.EligibleProduct{
				OrderID:       order.ID,
				ProductID:     item.ProductID,
				ProductName:   item.Name,
				ProductImage:  image,
				DeliveredDate: order.UpdatedAt,
				OrderDate:     order.Date,
			})
		}
	}
	return eligible, nil
}

// bumpRevision moves readers of the product's summary to a new cache key.
// Summaries computed from reads that raced with the insert are written under
// the previous revision and never served again.
func (s *ReviewService) bumpRevision(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, revisionCacheKey(productID)); err != nil {
		s.log.Warn("review cache invalidation failed", zap.String("product_id", productID), zap.Error(err))
	}
}

// summaryKey returns the cache key for the product's current revision.
func (s *ReviewService) summaryKey(ctx context.Context, productID string) (string, error) {
	var rev int64
	if _, err := s.cache.GetJSON(ctx, revisionCacheKey(productID), &rev); err != nil {
		return "", err
	}
	return summaryCacheKey(productID, rev), nil
}

func revisionCacheKey(productID string) string {
	return "product:" + productID + ":rev"
}

func summaryCacheKey(productID string, rev int64) string {
	return "product:" + productID + ":v" + strconv.FormatInt(rev, 10)
}
