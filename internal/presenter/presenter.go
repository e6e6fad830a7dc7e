// Package presenter turns the cached result set into card and detail views.
// A Presenter reads the cache exactly once and serves every later call from
// memory.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pageza/recipefinder/backend/internal/resultcache"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// State is the presenter's position in Idle -> Loading -> {Empty, Populated},
// with DetailOpen layered over Populated.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateEmpty      State = "empty"
	StatePopulated  State = "populated"
	StateDetailOpen State = "detail_open"
)

// EmptyMessage is shown when there is nothing to present.
const EmptyMessage = "No recommendations found."

// DefaultImage is used when no default is configured.
const DefaultImage = "/static/default.png"

var (
	ErrNotLoaded     = errors.New("presenter: results not loaded")
	ErrUnknownRecipe = errors.New("presenter: no such recipe in results")
)

// CardView is one entry of the results grid.
type CardView struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Category         string  `json:"category"`
	Image            string  `json:"image"`
	Rating           float64 `json:"rating"`
	ReviewCount      int     `json:"reviewCount"`
	Calories         float64 `json:"calories"`
	TotalTimeMinutes int     `json:"totalTimeMinutes"`
}

// DetailView is the full breakdown of one selected recipe.
type DetailView struct {
	CardView
	Keywords          []string               `json:"keywords"`
	Ingredients       []types.IngredientLine `json:"ingredients"`
	Instructions      []string               `json:"instructions"`
	Similarity        float64                `json:"similarity"`
	SimilarityPercent string                 `json:"similarityPercent"`
}

// View is a snapshot of what should be rendered.
type View struct {
	State   State       `json:"state"`
	Message string      `json:"message,omitempty"`
	Cards   []CardView  `json:"cards"`
	Detail  *DetailView `json:"detail,omitempty"`
}

// Presenter is a single page view over one session's cached results.
// It is not safe for concurrent use.
type Presenter struct {
	cache        resultcache.Store
	sessionID    string
	defaultImage string

	state    State
	records  []types.RecipeRecord
	cards    []CardView
	selected *DetailView
}

// New creates an idle presenter.
func New(cache resultcache.Store, sessionID, defaultImage string) *Presenter {
	if defaultImage == "" {
		defaultImage = DefaultImage
	}
	return &Presenter{
		cache:        cache,
		sessionID:    sessionID,
		defaultImage: defaultImage,
		state:        StateIdle,
	}
}

// State returns the current state.
func (p *Presenter) State() State {
	return p.state
}

// Load takes the cached results once and settles in Empty or Populated.
// Calls after the first return the current view without touching the cache.
// A cache failure settles in Empty; the error is returned for logging.
func (p *Presenter) Load(ctx context.Context) (View, error) {
	if p.state != StateIdle {
		return p.View(), nil
	}
	p.state = StateLoading

	records, ok, err := p.cache.TakeAndClear(ctx, p.sessionID)
	if err != nil || !ok || len(records) == 0 {
		p.state = StateEmpty
		if err != nil {
			return p.View(), fmt.Errorf("failed to read cached results: %w", err)
		}
		return p.View(), nil
	}

	p.records = records
	p.cards = make([]CardView, 0, len(records))
	for _, r := range records {
		p.cards = append(p.cards, p.card(r))
	}
	p.state = StatePopulated
	return p.View(), nil
}

// Select opens the detail view for the recipe with the given id.
func (p *Presenter) Select(id int64) (*DetailView, error) {
	if p.state != StatePopulated && p.state != StateDetailOpen {
		return nil, ErrNotLoaded
	}
	for _, r := range p.records {
		if r.RecipeID == id {
			p.selected = p.detail(r)
			p.state = StateDetailOpen
			return p.selected, nil
		}
	}
	return nil, ErrUnknownRecipe
}

// Close leaves the detail view and returns to the grid.
func (p *Presenter) Close() {
	if p.state == StateDetailOpen {
		p.selected = nil
		p.state = StatePopulated
	}
}

// View returns a snapshot of the current state.
func (p *Presenter) View() View {
	v := View{State: p.state, Cards: p.cards}
	if v.Cards == nil {
		v.Cards = []CardView{}
	}
	switch p.state {
	case StateEmpty:
		v.Message = EmptyMessage
	case StateDetailOpen:
		v.Detail = p.selected
	}
	return v
}

// Details returns detail views for every loaded record in result order.
// Used when the page renders all detail dialogs up front.
func (p *Presenter) Details() []DetailView {
	out := make([]DetailView, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, *p.detail(r))
	}
	return out
}

func (p *Presenter) card(r types.RecipeRecord) CardView {
	return CardView{
		ID:               r.RecipeID,
		Name:             r.Name,
		Description:      r.Description,
		Category:         r.RecipeCategory,
		Image:            ResolveImage(r.Images, p.defaultImage),
		Rating:           r.AggregatedRating,
		ReviewCount:      r.ReviewCount,
		Calories:         r.Calories,
		TotalTimeMinutes: r.TotalTimeMinutes,
	}
}

func (p *Presenter) detail(r types.RecipeRecord) *DetailView {
	keywords := r.Keywords
	if len(keywords) == 0 {
		keywords = r.KeywordsName
	}
	return &DetailView{
		CardView:          p.card(r),
		Keywords:          nonNil(keywords),
		Ingredients:       r.IngredientLines(),
		Instructions:      nonNil(r.RecipeInstructions),
		Similarity:        r.Similarity,
		SimilarityPercent: fmt.Sprintf("%.2f%%", r.Similarity*100),
	}
}

// ResolveImage returns the first usable image URL, or fallback when none is.
// Usable means an absolute http(s) URL with a host, or a path rooted at "/".
func ResolveImage(images []string, fallback string) string {
	for _, raw := range images {
		if usableImage(raw) {
			return strings.TrimSpace(raw)
		}
	}
	return fallback
}

func usableImage(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n\"<>") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "":
		return strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && u.Path != "/"
	default:
		return false
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
