package panel

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"event-feedback-server/client"
)

// PageSize is the fixed number of rows per panel page.
const PageSize = 10

// loadPerPage is the largest page the API will serve; Load requests it to
// minimize round trips while walking the server's pages.
const loadPerPage = 100

// StatusAll disables the status filter.
const StatusAll = "all"

// EditBuffer holds the controlled-input values of the one active edit
// session. Rating stays a raw select value until save.
type EditBuffer struct {
	Name       string
	Email      string
	EventName  string
	Division   string
	Rating     string
	Comment    string
	Suggestion string
	Status     string
}

// Panel is the authenticated list view: the fully fetched feedback slice plus
// search text, status filter, page index and the edit/delete row flows. At
// most one edit session and one delete confirmation are active at a time.
type Panel struct {
	Client  *client.Client
	Session *client.SessionAdapter

	navigate func(route string)

	mu           sync.Mutex
	feedbacks    []client.Feedback
	searchQuery  string
	statusFilter string
	page         int

	editingID    uint // 0 = no edit session
	editBuffer   EditBuffer
	confirmingID uint // 0 = no delete pending

	banner      *Banner
	bannerTimer *time.Timer
}

func NewPanel(c *client.Client, session *client.SessionAdapter, navigate func(route string)) *Panel {
	return &Panel{
		Client:       c,
		Session:      session,
		navigate:     navigate,
		statusFilter: StatusAll,
		page:         1,
	}
}

// RequireAuth redirects to the login view when the session has resolved with
// no user. It returns false while loading or unauthenticated; the panel
// renders nothing in either case.
func (p *Panel) RequireAuth() bool {
	if p.Session.Loading() {
		return false
	}
	if p.Session.CurrentUser() == nil {
		if p.navigate != nil {
			p.navigate("/login")
		}
		return false
	}
	return true
}

// Load fetches the full list and replaces local state. The API pages its
// responses, so Load follows pagination.total_pages until every row is held;
// the panel's own paging then runs over the complete list. Called on mount
// and after every mutation; there is no optimistic update.
func (p *Panel) Load(ctx context.Context) error {
	var all []client.Feedback
	for page := 1; ; page++ {
		result, err := p.Client.List(ctx, client.Filters{
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(loadPerPage),
		})
		if err != nil {
			p.setBanner(BannerError, "Failed to load feedbacks", errorBannerTTL)
			return err
		}
		all = append(all, result.Feedbacks...)
		if result.Pagination == nil || page >= result.Pagination.TotalPages || len(result.Feedbacks) == 0 {
			break
		}
	}
	p.mu.Lock()
	p.feedbacks = all
	p.mu.Unlock()
	return nil
}

// SetSearch updates the free-text filter and rewinds to the first page.
func (p *Panel) SetSearch(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searchQuery = query
	p.page = 1
}

// SetStatusFilter updates the status filter ("all" or an exact status) and
// rewinds to the first page.
func (p *Panel) SetStatusFilter(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusFilter = status
	p.page = 1
}

// Filtered returns rows matching both filters: the query as a
// case-insensitive substring of name, email or event name, and the status
// exactly. Both must hold.
func (p *Panel) Filtered() []client.Feedback {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filteredLocked()
}

func (p *Panel) filteredLocked() []client.Feedback {
	query := strings.ToLower(strings.TrimSpace(p.searchQuery))
	out := make([]client.Feedback, 0, len(p.feedbacks))
	for _, fb := range p.feedbacks {
		if p.statusFilter != StatusAll && p.statusFilter != "" && fb.Status != p.statusFilter {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(fb.Name), query) &&
			!strings.Contains(strings.ToLower(fb.Email), query) &&
			!strings.Contains(strings.ToLower(fb.EventName), query) {
			continue
		}
		out = append(out, fb)
	}
	return out
}

// TotalPages is ceil(N/PageSize) over the filtered rows.
func (p *Panel) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.filteredLocked())
	return (n + PageSize - 1) / PageSize
}

// CurrentPage returns the visible slice of the filtered rows.
func (p *Panel) CurrentPage() []client.Feedback {
	p.mu.Lock()
	defer p.mu.Unlock()
	filtered := p.filteredLocked()

	start := (p.page - 1) * PageSize
	if start >= len(filtered) {
		return nil
	}
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// Page returns the 1-based current page index.
func (p *Panel) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// SetPage moves to the given page, clamped to [1, TotalPages].
func (p *Panel) SetPage(page int) {
	total := p.TotalPages()
	p.mu.Lock()
	defer p.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if total > 0 && page > total {
		page = total
	}
	p.page = page
}

// StartEdit opens an edit session for the given row, seeding the buffer from
// the record. Opening a new session implicitly closes any previous one.
func (p *Panel) StartEdit(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, fb := range p.feedbacks {
		if fb.ID != id {
			continue
		}
		p.editingID = id
		p.editBuffer = EditBuffer{
			Name:       fb.Name,
			Email:      fb.Email,
			EventName:  fb.EventName,
			Division:   fb.Division,
			Rating:     strconv.Itoa(fb.Rating),
			Comment:    fb.Comment,
			Suggestion: fb.Suggestion,
			Status:     fb.Status,
		}
		return
	}
}

// EditingID returns the row under edit, 0 when none.
func (p *Panel) EditingID() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editingID
}

// Edit exposes the active edit buffer for mutation by the form inputs.
func (p *Panel) Edit() *EditBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.editingID == 0 {
		return nil
	}
	return &p.editBuffer
}

// CancelEdit discards the edit session, leaving the record untouched.
func (p *Panel) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editingID = 0
	p.editBuffer = EditBuffer{}
}

// SaveEdit sends the buffered values as a patch and re-fetches the full list
// to resynchronize. On failure the edit session stays open and the row keeps
// its pre-edit state.
func (p *Panel) SaveEdit(ctx context.Context) error {
	p.mu.Lock()
	id := p.editingID
	buf := p.editBuffer
	p.mu.Unlock()
	if id == 0 {
		return errNoEditSession
	}

	input := client.UpdateInput{}
	if name := strings.TrimSpace(buf.Name); name != "" {
		input.Name = &name
	}
	if email := strings.TrimSpace(buf.Email); email != "" {
		input.Email = &email
	}
	if eventName := strings.TrimSpace(buf.EventName); eventName != "" {
		input.EventName = &eventName
	}
	if buf.Division != "" {
		input.Division = &buf.Division
	}
	if buf.Rating != "" {
		if rating, err := strconv.Atoi(buf.Rating); err == nil {
			input.Rating = &rating
		}
	}
	// Comment and suggestion always travel, even empty: the buffer was seeded
	// from the record, so a blank buffer means the admin cleared the value.
	comment := strings.TrimSpace(buf.Comment)
	input.Comment = &comment
	suggestion := strings.TrimSpace(buf.Suggestion)
	input.Suggestion = &suggestion
	if buf.Status != "" {
		input.Status = &buf.Status
	}

	if _, err := p.Client.Update(ctx, id, input); err != nil {
		p.setBanner(BannerError, "Failed to update feedback", errorBannerTTL)
		return err
	}

	if err := p.Load(ctx); err != nil {
		return err
	}
	p.CancelEdit()
	p.setBanner(BannerSuccess, "Feedback updated successfully", successBannerTTL)
	return nil
}

// RequestDelete asks for confirmation before deleting the given row.
func (p *Panel) RequestDelete(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmingID = id
}

// ConfirmingDeleteID returns the row pending delete confirmation, 0 if none.
func (p *Panel) ConfirmingDeleteID() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.confirmingID
}

// CancelDelete dismisses the confirmation dialog.
func (p *Panel) CancelDelete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmingID = 0
}

// ConfirmDelete deletes the confirmed row and re-fetches the list. Deleting
// an already-deleted record surfaces an error banner; the list view stays up.
func (p *Panel) ConfirmDelete(ctx context.Context) error {
	p.mu.Lock()
	id := p.confirmingID
	p.confirmingID = 0
	p.mu.Unlock()
	if id == 0 {
		return errNoDeleteTarget
	}

	if _, err := p.Client.Delete(ctx, id); err != nil {
		p.setBanner(BannerError, "Failed to delete feedback", errorBannerTTL)
		return err
	}

	if err := p.Load(ctx); err != nil {
		return err
	}
	p.setBanner(BannerSuccess, "Feedback deleted successfully", successBannerTTL)
	return nil
}

// Banner returns the active banner, or nil once dismissed.
func (p *Panel) Banner() *Banner {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.banner
}

func (p *Panel) setBanner(kind, text string, ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bannerTimer != nil {
		p.bannerTimer.Stop()
	}
	p.banner = &Banner{Kind: kind, Text: text}
	p.bannerTimer = time.AfterFunc(ttl, func() {
		p.mu.Lock()
		p.banner = nil
		p.mu.Unlock()
	})
}

// Close cancels any pending banner timer.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bannerTimer != nil {
		p.bannerTimer.Stop()
		p.bannerTimer = nil
	}
}
