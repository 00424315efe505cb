// Package normalizer turns a grounding response into the restaurant list shown to the user.
//
// The grounding tool only gives us a place title and a maps link, so every other
// restaurant field is filled with fixed placeholders or synthetic values. Rating and
// review counts come from a RandomSource and carry no real signal.
package normalizer

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"dine-server/models"
)

const (
	IDPrefix           = "res-"
	UnknownName        = "Unknown Restaurant"
	DefaultDescription = "A top-rated local favorite discovered via AI grounding."
	DefaultCuisine     = "Local Favorite"
	DefaultPriceLevel  = "$$"
	DefaultAddress     = "Refer to Map Link"

	MinRating   = 4.5
	RatingSpan  = 0.5
	MinReviews  = 100
	ReviewsSpan = 1000

	PlaceholderImageFormat = "https://picsum.photos/seed/%s/600/400"
)

// RandomSource is satisfied by *rand.Rand.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// ImageURLFunc maps a restaurant name to an image url.
type ImageURLFunc func(name string) string

type Normalizer struct {
	mu       sync.Mutex
	rng      RandomSource
	imageURL ImageURLFunc
}

type Option func(*Normalizer)

// WithRandomSource pins the synthetic rating/reviews generator.
func WithRandomSource(rng RandomSource) Option {
	return func(n *Normalizer) {
		n.rng = rng
	}
}

func WithImageURLFunc(f ImageURLFunc) Option {
	return func(n *Normalizer) {
		n.imageURL = f
	}
}

// NewNormalizer builds a normalizer seeded from the clock unless a source is given.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		imageURL: PlaceholderImageURL,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize keeps the chunks carrying a maps place, in order, and builds one
// restaurant per survivor. Ids are indexed over the survivors. The text is
// returned untouched.
func (n *Normalizer) Normalize(chunks []models.GroundingChunk, text string) models.SearchResult {
	n.mu.Lock()
	defer n.mu.Unlock()

	restaurants := make([]models.Restaurant, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Maps == nil {
			continue
		}
		restaurants = append(restaurants, n.toRestaurant(len(restaurants), chunk.Maps))
	}

	return models.SearchResult{
		Restaurants: restaurants,
		Insight:     text,
	}
}

func (n *Normalizer) toRestaurant(index int, place *models.MapsPlace) models.Restaurant {
	name := place.Title
	if name == "" {
		name = UnknownName
	}

	return models.Restaurant{
		ID:          fmt.Sprintf("%s%d", IDPrefix, index),
		Name:        name,
		Description: DefaultDescription,
		Rating:      n.rating(),
		Reviews:     n.rng.Intn(ReviewsSpan) + MinReviews,
		Cuisine:     DefaultCuisine,
		PriceLevel:  DefaultPriceLevel,
		Address:     DefaultAddress,
		MapsURL:     place.URI,
		ImageURL:    n.imageURL(name),
	}
}

// rating stays below the upper bound even when float rounding would land on it.
func (n *Normalizer) rating() float64 {
	r := MinRating + n.rng.Float64()*RatingSpan
	if upper := MinRating + RatingSpan; r >= upper {
		return math.Nextafter(upper, 0)
	}
	return r
}

// PlaceholderImageURL returns a stable picsum url seeded by the name.
func PlaceholderImageURL(name string) string {
	return fmt.Sprintf(PlaceholderImageFormat, url.PathEscape(name))
}
