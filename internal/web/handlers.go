package web

import (
	"net/http"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

const dateLayout = "2006-01-02"

// Handlers contains HTTP route handlers for the timeline view.
type Handlers struct {
	store    storage.Store
	cfg      *config.Config
	renderer *Renderer
	now      func() time.Time
}

// HandleTimeline handles GET /timeline — the facts of one calendar day.
// Accepts ?date=2006-01-02 (default today) and ?q= search terms.
func (h *Handlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("date must look like 2006-01-02"))
			return
		}
		date = parsed
	}
	query := r.URL.Query().Get("q")

	facts, err := h.store.FactsForDay(date, nil, query)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	now := h.now()
	views := make([]FactView, len(facts))
	var total time.Duration
	for i, f := range facts {
		views[i] = FactView{Summary: f.ToSummary(), Rendered: renderMarkdown(f.Description)}
		total += f.Elapsed(now)
	}

	h.renderer.renderPage(w, "timeline", TimelinePageData{
		PageData: PageData{
			Title:   date.Format(dateLayout),
			Version: h.renderer.version,
		},
		Date:     date.Format(dateLayout),
		PrevDate: date.AddDate(0, 0, -1).Format(dateLayout),
		NextDate: date.AddDate(0, 0, 1).Format(dateLayout),
		Query:    query,
		Facts:    views,
		Total:    fact.FormatDelta(total),
	})
}

// HandleDetail handles GET /facts/{id} — a single fact with its description
// rendered as markdown.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("fact ID is required"))
		return
	}

	f, err := h.store.GetByID(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   f.Name(),
			Version: h.renderer.version,
		},
		Fact:      FactView{Summary: f.ToSummary(), Rendered: renderMarkdown(f.Description)},
		Date:      f.StartTime.Format(dateLayout),
		CreatedAt: time.Unix(f.CreatedAt, 0).Format(fact.TimeLayout),
		UpdatedAt: time.Unix(f.UpdatedAt, 0).Format(fact.TimeLayout),
	})
}
