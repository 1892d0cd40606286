package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/domain"
	"github.com/kailas-cloud/learnscout/internal/domain/item"
	"github.com/kailas-cloud/learnscout/internal/domain/platform"
	domusage "github.com/kailas-cloud/learnscout/internal/domain/usage"
	"github.com/kailas-cloud/learnscout/internal/logger"
	"github.com/kailas-cloud/learnscout/internal/textutil"
	healthuc "github.com/kailas-cloud/learnscout/internal/usecase/health"
	tagsuc "github.com/kailas-cloud/learnscout/internal/usecase/tags"
)

const (
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 64 << 10

	githubDescriptionLength = 60
	descriptionLength       = 100
)

// Response headers.
const (
	HeaderRewriterTokens = "X-Rewriter-Tokens"
	HeaderRewriterCalls  = "X-Rewriter-Calls"
	HeaderFailedSources  = "X-Failed-Sources"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the browser UI API.
type Server struct {
	search        Searcher
	tags          TagManager
	preview       Previewer
	usage         UsageReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	tags TagManager,
	preview Previewer,
	usage UsageReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		tags:    tags,
		preview: preview,
		usage:   usage,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidPlatform, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidTag, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidURL, http.StatusBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chirouter.Router) {
		r.Get("/search", s.SearchGet)
		r.Post("/search", s.SearchPost)
		r.Post("/preview", s.Preview)
		r.Get("/usage", s.GetUsage)
		r.Get("/tags/{resourceID}", s.GetTags)
		r.Post("/tags/{resourceID}", s.AddTag)
		r.Delete("/tags/{resourceID}/{tag}", s.RemoveTag)
	})
}

// --- Search ---

type searchRequest struct {
	Query    string `json:"query"`
	Platform string `json:"platform"`
}

// badgesResponse fields are inlined into each item.
type badgesResponse struct {
	Stars     int    `json:"stars,omitempty"`
	Forks     int    `json:"forks,omitempty"`
	Language  string `json:"language,omitempty"`
	Views     int64  `json:"views,omitempty"`
	Likes     int64  `json:"likes,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Upvotes   int    `json:"upvotes,omitempty"`
	Comments  int    `json:"numComments,omitempty"`
	Subreddit string `json:"subreddit,omitempty"`
	Downloads int64  `json:"downloads,omitempty"`
	Year      int    `json:"year,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Replies   int    `json:"replies,omitempty"`
}

type itemResponse struct {
	Platform    string     `json:"platform"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Relevance   float64    `json:"relevance"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	badgesResponse
}

// SearchGet handles GET /api/search?query=..&platform=..
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := q.Get("query")
	if text == "" {
		text = q.Get("q")
	}
	s.runSearch(w, r, searchRequest{Query: text, Platform: q.Get("platform")})
}

// SearchPost handles POST /api/search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.runSearch(w, r, req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req searchRequest) {
	ctx, usage := domain.NewContextWithUsage(r.Context())

	res, err := s.search.Search(ctx, req.Query, req.Platform)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := make([]itemResponse, 0, len(res.Items))
	for i := range res.Items {
		resp = append(resp, itemToResponse(&res.Items[i]))
	}

	setUsageHeaders(w, usage)
	if len(res.Failed) > 0 {
		w.Header().Set(HeaderFailedSources, joinPlatforms(res.Failed))
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Preview ---

type previewRequest struct {
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
}

type previewResponse struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Image    string `json:"image,omitempty"`
	SiteName string `json:"siteName,omitempty"`
}

// Preview handles POST /api/preview.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.preview.Preview(r.Context(), req.URL)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{
		URL:      p.URL,
		Title:    p.Title,
		Summary:  p.Description,
		Image:    p.Image,
		SiteName: p.SiteName,
	})
}

// --- Tags ---

type tagRequest struct {
	Tag string `json:"tag"`
}

type tagsResponse struct {
	Tags        []string `json:"tags"`
	PopularTags []string `json:"popularTags"`
}

// GetTags handles GET /api/tags/{resourceID}.
func (s *Server) GetTags(w http.ResponseWriter, r *http.Request) {
	t, err := s.tags.Get(r.Context(), chirouter.URLParam(r, "resourceID"))
	s.writeTags(w, r, t, err)
}

// AddTag handles POST /api/tags/{resourceID}.
func (s *Server) AddTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !s.decode(w, r, &req) {
		return
	}
	t, err := s.tags.Add(r.Context(), chirouter.URLParam(r, "resourceID"), req.Tag)
	s.writeTags(w, r, t, err)
}

// RemoveTag handles DELETE /api/tags/{resourceID}/{tag}.
func (s *Server) RemoveTag(w http.ResponseWriter, r *http.Request) {
	t, err := s.tags.Remove(r.Context(), chirouter.URLParam(r, "resourceID"), chirouter.URLParam(r, "tag"))
	s.writeTags(w, r, t, err)
}

func (s *Server) writeTags(w http.ResponseWriter, r *http.Request, t tagsuc.Tags, err error) {
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tagsResponse{Tags: nonNil(t.Tags), PopularTags: nonNil(t.Popular)})
}

// --- Usage ---

type usageReport struct {
	Provider  string    `json:"provider"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Limit     int64     `json:"limit"`
	Used      int64     `json:"used"`
	Remaining int64     `json:"remaining"`
	Exhausted bool      `json:"exhausted"`
}

type usageResponse struct {
	Period    string        `json:"period"`
	Providers []usageReport `json:"providers"`
}

// GetUsage handles GET /api/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	reports := s.usage.GetReports(r.Context(), period)
	resp := usageResponse{Period: string(period), Providers: make([]usageReport, 0, len(reports))}
	for _, rep := range reports {
		resp.Providers = append(resp.Providers, usageReport{
			Provider:  rep.Provider(),
			Start:     rep.Start(),
			End:       rep.End(),
			Limit:     rep.Limit(),
			Used:      rep.Used(),
			Remaining: rep.Remaining(),
			Exhausted: rep.Exhausted(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Health ---

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Sources []string          `json:"sources"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	sources := make([]string, 0, len(report.Sources))
	for _, p := range report.Sources {
		sources = append(sources, p.String())
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Sources: sources,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

func itemToResponse(sc *item.Scored) itemResponse {
	it := sc.Item()
	limit := descriptionLength
	if it.Platform == platform.GitHub {
		limit = githubDescriptionLength
	}

	resp := itemResponse{
		Platform:       it.Platform.String(),
		Type:           string(it.Type),
		Title:          it.Title,
		Description:    textutil.Truncate(it.Description, limit),
		URL:            it.URL,
		Relevance:      sc.Relevance(),
		Thumbnail:      it.Thumbnail,
		Author:         it.Author,
		badgesResponse: badgesResponse(it.Badges),
	}
	if !it.PublishedAt.IsZero() {
		t := it.PublishedAt.UTC()
		resp.PublishedAt = &t
	}
	return resp
}

func joinPlatforms(ps []platform.Platform) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ",")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.RewriteUsage) {
	if usage.Calls() > 0 {
		w.Header().Set(HeaderRewriterTokens, strconv.Itoa(usage.TotalTokens()))
		w.Header().Set(HeaderRewriterCalls, strconv.Itoa(usage.Calls()))
	}
}

// decode reads a JSON body, writing 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		logger.FromContextOr(r.Context(), s.logger).Debug("bad request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidPlatform,
		domain.ErrInvalidTag,
		domain.ErrInvalidURL,
		domain.ErrNotFound,
		domain.ErrSourceUnavailable,
		domain.ErrMalformedResponse,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
