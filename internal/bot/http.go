package bot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"library-admin/internal/admin"
	"library-admin/web"
)

// initDataMaxAge is how long Mini App init data stays valid
const initDataMaxAge = 24 * time.Hour

// HTTPServer serves health checks, metrics, the Telegram webhook and the
// read-only web console
type HTTPServer struct {
	bot         *Bot
	backend     admin.Backend
	gatherer    prometheus.Gatherer
	webhookMode bool // If false (polling mode), skip authentication for easier local dev
	templates   *template.Template
	logger      *zap.Logger
	now         func() time.Time
}

// NewHTTPServer creates the HTTP server. backend serves the web console's lists.
func NewHTTPServer(bot *Bot, backend admin.Backend, gatherer prometheus.Gatherer, webhookMode bool) (*HTTPServer, error) {
	templates, err := template.ParseFS(web.Content, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse web templates: %w", err)
	}
	return &HTTPServer{
		bot:         bot,
		backend:     backend,
		gatherer:    gatherer,
		webhookMode: webhookMode,
		templates:   templates,
		logger:      bot.logger,
		now:         time.Now,
	}, nil
}

// Router returns the routes of the server
func (hs *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}).Methods(http.MethodGet)

	// Root endpoint
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mode := "polling"
		if hs.webhookMode {
			mode = "webhook"
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Library admin console is running (mode: %s)", mode)
	}).Methods(http.MethodGet)

	if hs.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(hs.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// Webhook endpoint (only used in webhook mode)
	r.HandleFunc("/telegram-webhook", hs.handleWebhook).Methods(http.MethodPost)

	r.Handle("/web-app", hs.authMiddleware(http.HandlerFunc(hs.handleIndex))).Methods(http.MethodGet)
	webApp := r.PathPrefix("/web-app").Subrouter()
	webApp.Use(hs.authMiddleware)
	webApp.HandleFunc("/", hs.handleIndex).Methods(http.MethodGet)
	webApp.HandleFunc("/{entity}", hs.handleList).Methods(http.MethodGet)

	return r
}

// handleWebhook hands an update to the bot and answers Telegram right away
func (hs *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		hs.logger.Warn("Error decoding webhook update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Process update in background to respond quickly to Telegram
	hs.bot.Dispatch(update)

	w.WriteHeader(http.StatusOK)
}

type navLink struct {
	Label  string
	Href   string
	Active bool
}

type pageLink struct {
	Label    string
	Href     string
	Active   bool
	Disabled bool
}

type pageView struct {
	Title    string
	Nav      []navLink
	Screen   admin.Screen
	Pages    []pageLink
	InitData string
}

func (hs *HTTPServer) nav(active, initData string) []navLink {
	links := make([]navLink, 0, len(admin.Catalog()))
	for _, d := range admin.Catalog() {
		href := "/web-app/" + d.Name
		if initData != "" {
			href += "?" + url.Values{"init_data": {initData}}.Encode()
		}
		links = append(links, navLink{Label: d.Title, Href: href, Active: d.Name == active})
	}
	return links
}

// handleIndex serves the web console's landing page
func (hs *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	initData := r.URL.Query().Get("init_data")
	hs.render(w, "index.html", pageView{Title: "Library admin", Nav: hs.nav("", initData), InitData: initData})
}

// handleList renders one page of an entity list. The query carries page,
// search and the entity's filters, the same parameters the API takes.
func (hs *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	d, ok := admin.Lookup(mux.Vars(r)["entity"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	state := admin.PageState{Page: page, Search: query.Get("search"), Filters: map[string]string{}}
	for _, f := range d.Filters {
		state.Filters[f.Key] = query.Get(f.Key)
	}

	list := admin.NewListController(d, hs.backend, pageSurface{}, admin.WithLogger(hs.logger))
	list.Navigate(r.Context(), state)
	screen := list.Screen()

	view := pageView{
		Title:    d.Title,
		Nav:      hs.nav(d.Name, query.Get("init_data")),
		Screen:   screen,
		InitData: query.Get("init_data"),
	}
	if screen.Pager != nil {
		for _, link := range screen.Pager.Links {
			values := url.Values{}
			for k, v := range query {
				values[k] = v
			}
			values.Set("page", strconv.Itoa(link.Page))
			view.Pages = append(view.Pages, pageLink{
				Label:    link.Label,
				Href:     "/web-app/" + d.Name + "?" + values.Encode(),
				Active:   link.Active,
				Disabled: link.Disabled,
			})
		}
	}

	hs.render(w, "list.html", view)
}

func (hs *HTTPServer) render(w http.ResponseWriter, name string, view pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := hs.templates.ExecuteTemplate(w, name, view); err != nil {
		hs.logger.Error("Failed to render page", zap.Error(err), zap.String("template", name))
	}
}

// pageSurface is the surface of a one-shot web request; the handler reads
// the controller's last screen instead of drawing incrementally
type pageSurface struct{}

func (pageSurface) Draw(admin.Screen) {}
func (pageSurface) ShowForm(admin.FormScreen) {}
func (pageSurface) ShowDetail(admin.DetailScreen) {}
func (pageSurface) CloseDialog() {}
func (pageSurface) Confirm(context.Context, string) bool { return false }
func (pageSurface) Alert(context.Context, string) {}

// validateTelegramInitData validates the Telegram Mini App initData
func (hs *HTTPServer) validateTelegramInitData(initData string) (int64, error) {
	if initData == "" {
		return 0, fmt.Errorf("missing initData")
	}

	// Parse the initData
	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	// Extract hash
	hash := values.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("missing hash in initData")
	}
	values.Del("hash")

	// Create data-check-string
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dataCheckString strings.Builder
	for i, k := range keys {
		if i > 0 {
			dataCheckString.WriteByte('\n')
		}
		dataCheckString.WriteString(k)
		dataCheckString.WriteByte('=')
		dataCheckString.WriteString(values.Get(k))
	}

	if !hmac.Equal([]byte(signInitData(hs.bot.Token(), dataCheckString.String())), []byte(hash)) {
		return 0, fmt.Errorf("invalid hash")
	}

	// Check auth_date (data should be recent, within 24 hours)
	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("missing auth_date")
	}
	if hs.now().Sub(time.Unix(authDate, 0)) > initDataMaxAge {
		return 0, fmt.Errorf("initData is too old")
	}

	// Extract user ID
	userStr := values.Get("user")
	if userStr == "" {
		return 0, fmt.Errorf("missing user data")
	}

	var userData struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(userStr), &userData); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}

	// Check if user is allowed
	if !hs.bot.IsAllowed(userData.ID) {
		return 0, fmt.Errorf("user not allowed")
	}

	return userData.ID, nil
}

// signInitData computes the Mini App hash of a data-check-string
func signInitData(token, dataCheckString string) string {
	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(token))
	secret := secretKey.Sum(nil)

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(dataCheckString))
	return hex.EncodeToString(h.Sum(nil))
}

// authMiddleware validates Telegram Mini App authentication, taken from the
// Authorization header or the init_data query parameter.
// In polling mode (webhookMode=false), authentication is skipped for easier local development
func (hs *HTTPServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication in polling mode (local development)
		if !hs.webhookMode {
			hs.logger.Debug("Skipping authentication (polling mode)",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			next.ServeHTTP(w, r)
			return
		}

		initData := r.URL.Query().Get("init_data")
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "tma ") {
			initData = strings.TrimPrefix(authHeader, "tma ")
		}
		if initData == "" {
			hs.logger.Warn("Missing or invalid authorization")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := hs.validateTelegramInitData(initData)
		if err != nil {
			hs.logger.Warn("Failed to validate initData",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		hs.logger.Debug("Authenticated request",
			zap.Int64("user_id", userID),
			zap.String("path", r.URL.Path),
		)

		next.ServeHTTP(w, r)
	})
}
