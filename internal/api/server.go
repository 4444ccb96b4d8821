// Package api exposes the HTTP surface: public complaint intake and
// tracking, admin triage, statistics, and report exports.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pengaduan-service/internal/antispam"
	"pengaduan-service/internal/auth"
	"pengaduan-service/internal/config"
	"pengaduan-service/internal/notify"
	"pengaduan-service/internal/report"
	"pengaduan-service/internal/store"
)

// DataStore is the slice of the persistence layer the handlers use.
type DataStore interface {
	CreateComplaint(ctx context.Context, input store.NewComplaint) (store.Complaint, error)
	FindByCode(ctx context.Context, code string) (store.Complaint, *store.ComplaintUpdate, error)
	List(ctx context.Context, page, limit int) ([]store.Complaint, int, error)
	ListByMonth(ctx context.Context, year, month int) ([]store.Complaint, error)
	UpdateComplaint(ctx context.Context, code string, patch store.ComplaintPatch) (store.Complaint, error)
	StatsByYear(ctx context.Context, year int) (store.YearStats, error)
	AggregateByYear(ctx context.Context, year int) ([]store.MonthCount, []store.ClassificationCount, error)
	AnnualMatrix(ctx context.Context, year int) ([][]int, []store.MonthStatus, error)
	Years(ctx context.Context) ([]int, error)
}

// Notifier is the outbound WhatsApp dispatch surface.
type Notifier interface {
	SendAndRecord(ctx context.Context, complaintID, kind, target, message string) notify.Result
	DispatchAsync(complaintID, kind, target, message string)
}

// LoginService validates credentials and returns a session token.
type LoginService interface {
	Login(ctx context.Context, identifier, password string) (string, error)
}

// Server wires the HTTP engine to the application services.
type Server struct {
	cfg        config.Config
	store      DataStore
	guard      antispam.Guard
	dispatcher Notifier
	login      LoginService
	tokens     *auth.TokenManager
	sheets     *report.SheetsExporter
	log        zerolog.Logger
	engine     *gin.Engine
}

func NewServer(
	cfg config.Config,
	dataStore DataStore,
	guard antispam.Guard,
	dispatcher Notifier,
	login LoginService,
	tokens *auth.TokenManager,
	sheets *report.SheetsExporter,
	log zerolog.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		cfg:        cfg,
		store:      dataStore,
		guard:      guard,
		dispatcher: dispatcher,
		login:      login,
		tokens:     tokens,
		sheets:     sheets,
		log:        log.With().Str("component", "api").Logger(),
		engine:     gin.New(),
	}

	server.engine.Use(gin.Recovery())
	server.engine.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	server.registerRoutes()

	return server
}

func (s *Server) Run() error {
	return s.engine.Run(":" + s.cfg.Port)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
	})

	s.engine.POST("/api/pengaduan", s.handleSubmitComplaint)
	s.engine.GET("/api/pengaduan", s.handleListComplaints)
	s.engine.GET("/api/pengaduan/stats", s.handleStats)
	s.engine.GET("/api/pengaduan/aggregate", s.handleAggregate)
	s.engine.GET("/api/pengaduan/years", s.handleYears)
	s.engine.GET("/api/pengaduan/:code", s.handleGetComplaint)
	s.engine.GET("/api/klasifikasi", s.handleKlasifikasi)
	s.engine.POST("/api/auth/login", s.handleLogin)

	admin := s.engine.Group("/api", requireAdmin(s.tokens))
	admin.PATCH("/pengaduan/:code", s.handleUpdateComplaint)
	admin.POST("/pengaduan/:code/notify", s.handleNotifyComplaint)
	admin.GET("/export/csv", s.handleExportCSV)
	admin.GET("/export/excel", s.handleExportExcel)
	admin.POST("/export/sheets/monthly", s.handleExportSheetsMonthly)
	admin.POST("/export/sheets/annual", s.handleExportSheetsAnnual)
}

func (s *Server) trackLink(code string) string {
	if s.cfg.AppBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/status?ref=%s", s.cfg.AppBaseURL, code)
}

func (s *Server) handleSubmitComplaint(c *gin.Context) {
	var req SubmitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Format permintaan tidak valid")
		return
	}

	if req.HPField != "" {
		// Honeypot tripped; answer like a generic bad request.
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Permintaan tidak valid")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		var typed apiError
		if errors.As(err, &typed) {
			writeError(c, typed.Code, "VALIDATION_ERROR", typed.Message)
			return
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	clientIP := c.ClientIP()
	decision := s.guard.Check(c.Request.Context(), antispam.Submission{
		IP:          clientIP,
		Email:       req.Email,
		Description: req.Deskripsi,
	})
	if !decision.Allowed {
		s.log.Info().
			Str("ip", clientIP).
			Str("code", decision.Code).
			Msg("pengajuan ditolak kebijakan anti-spam")
		writeError(c, http.StatusTooManyRequests, decision.Code, decision.Message)
		return
	}

	complaint, err := s.store.CreateComplaint(c.Request.Context(), store.NewComplaint{
		ReporterName:   req.NamaLengkap,
		Email:          req.Email,
		Phone:          req.NomorTelepon,
		Classification: req.Klasifikasi,
		Description:    req.Deskripsi,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("simpan pengaduan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	// Best effort: the response never waits on WhatsApp delivery.
	message := renderReceiptMessage(complaint, s.trackLink(complaint.Code), s.cfg.WAMessageFooter)
	s.dispatcher.DispatchAsync(complaint.ID, "RECEIPT", complaint.Phone, message)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":        complaint.ID,
			"code":      complaint.Code,
			"createdAt": complaint.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleListComplaints(c *gin.Context) {
	limit := clampInt(atoiDefault(c.Query("limit"), 5), 1, 50)
	page := clampInt(atoiDefault(c.Query("page"), 1), 1, 1<<20)

	adminView := c.Query("admin") != ""
	if adminView {
		// The admin shape exposes reporter identity, so it needs a session.
		header := strings.TrimPrefix(strings.TrimSpace(c.GetHeader("Authorization")), "Bearer ")
		if _, err := s.tokens.Parse(strings.TrimSpace(header)); err != nil {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token tidak valid")
			return
		}
	}

	complaints, total, err := s.store.List(c.Request.Context(), page, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("daftar pengaduan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	data := make([]gin.H, 0, len(complaints))
	for _, item := range complaints {
		if adminView {
			completed := ""
			if item.CompletedAt != nil {
				completed = item.CompletedAt.UTC().Format("2006-01-02")
			}
			data = append(data, gin.H{
				"id":             item.Code,
				"tanggal":        item.CreatedAt.UTC().Format(time.RFC3339),
				"nama":           item.ReporterName,
				"email":          item.Email,
				"noWA":           item.Phone,
				"klasifikasi":    store.HumanizeClassification(item.Classification),
				"status":         store.HumanizeStatus(item.Status),
				"deskripsi":      item.Description,
				"rtl":            item.RTL,
				"tanggalSelesai": completed,
			})
			continue
		}
		data = append(data, gin.H{
			"id":          item.Code,
			"tanggal":     item.CreatedAt.UTC().Format(time.RFC3339),
			"klasifikasi": store.HumanizeClassification(item.Classification),
			"status":      store.HumanizeStatus(item.Status),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "page": page, "limit": limit, "total": total})
}

func (s *Server) handleGetComplaint(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		writeError(c, http.StatusBadRequest, "MISSING_CODE", "Kode pengaduan wajib diisi")
		return
	}

	complaint, latest, err := s.store.FindByCode(c.Request.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Pengaduan tidak ditemukan")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("code", code).Msg("cari pengaduan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	var latestUpdate gin.H
	if latest != nil {
		latestUpdate = gin.H{
			"status":    latest.Status,
			"note":      latest.Note,
			"createdAt": latest.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"code":           complaint.Code,
			"createdAt":      complaint.CreatedAt.UTC().Format(time.RFC3339),
			"status":         complaint.Status,
			"classification": complaint.Classification,
			"keterangan":     statusKeterangan(complaint, latest),
			"latestUpdate":   latestUpdate,
		},
	})
}

func (s *Server) handleUpdateComplaint(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var req UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Format permintaan tidak valid")
		return
	}
	if err := req.Validate(); err != nil {
		var typed apiError
		if errors.As(err, &typed) {
			writeError(c, typed.Code, "VALIDATION_ERROR", typed.Message)
			return
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	patch := store.ComplaintPatch{Status: req.Status, RTL: req.RTL, Note: req.Note}
	if req.TanggalSelesai != nil {
		parsed, err := time.Parse("2006-01-02", *req.TanggalSelesai)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "tanggalSelesai harus berformat YYYY-MM-DD")
			return
		}
		patch.CompletedAt = &parsed
	}

	complaint, err := s.store.UpdateComplaint(c.Request.Context(), code, patch)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Pengaduan tidak ditemukan")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("code", code).Msg("perbarui pengaduan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"code":   complaint.Code,
			"status": complaint.Status,
			"rtl":    complaint.RTL,
		},
	})
}

func (s *Server) handleNotifyComplaint(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var req NotifyRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	complaint, _, err := s.store.FindByCode(c.Request.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Pengaduan tidak ditemukan")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("code", code).Msg("cari pengaduan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	status := complaint.Status
	if override := strings.ToUpper(strings.TrimSpace(req.StatusOverride)); override != "" && store.ValidStatus(override) {
		status = override
	}
	rtl := complaint.RTL
	if req.RTLOverride != nil {
		rtl = *req.RTLOverride
	}
	completedAt := complaint.CompletedAt
	if raw := strings.TrimSpace(req.TanggalSelesaiOverride); raw != "" {
		if parsed, parseErr := time.Parse("2006-01-02", raw); parseErr == nil {
			completedAt = &parsed
		}
	}

	message := renderStatusUpdateMessage(complaint, status, rtl, completedAt, s.trackLink(complaint.Code), s.cfg.WAMessageFooter)
	result := s.dispatcher.SendAndRecord(c.Request.Context(), complaint.ID, "STATUS_UPDATE", complaint.Phone, message)
	if !result.Success {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "sent": false, "provider": result.Detail})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sent": true})
}

func (s *Server) handleStats(c *gin.Context) {
	year, ok := s.parseYear(c)
	if !ok {
		return
	}

	stats, err := s.store.StatsByYear(c.Request.Context(), year)
	if err != nil {
		s.log.Error().Err(err).Int("year", year).Msg("statistik gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":    stats.Year,
		"total":   stats.Total,
		"baru":    stats.Baru,
		"proses":  stats.Proses,
		"selesai": stats.Selesai,
		"status": gin.H{
			"BARU":    stats.Baru,
			"PROSES":  stats.Proses,
			"SELESAI": stats.Selesai,
		},
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAggregate(c *gin.Context) {
	year, ok := s.parseYear(c)
	if !ok {
		return
	}

	monthly, classification, err := s.store.AggregateByYear(c.Request.Context(), year)
	if err != nil {
		s.log.Error().Err(err).Int("year", year).Msg("agregasi gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	monthlyOut := make([]gin.H, 0, len(monthly))
	for _, m := range monthly {
		monthlyOut = append(monthlyOut, gin.H{"month": m.Month, "count": m.Count})
	}
	classOut := make([]gin.H, 0, len(classification))
	for _, entry := range classification {
		classOut = append(classOut, gin.H{"key": entry.Key, "label": entry.Label, "count": entry.Count})
	}

	c.JSON(http.StatusOK, gin.H{
		"year":           year,
		"monthly":        monthlyOut,
		"classification": classOut,
		"generatedAt":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleYears(c *gin.Context) {
	years, err := s.store.Years(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("daftar tahun gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	out := make([]string, 0, len(years))
	for _, year := range years {
		out = append(out, strconv.Itoa(year))
	}
	c.JSON(http.StatusOK, gin.H{"years": out})
}

func (s *Server) handleKlasifikasi(c *gin.Context) {
	data := make([]gin.H, 0, len(store.ClassificationOrder))
	for _, key := range store.ClassificationOrder {
		data = append(data, gin.H{"value": key, "label": store.HumanizeClassification(key)})
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Format permintaan tidak valid")
		return
	}

	token, err := s.login.Login(c.Request.Context(), req.Identifier, req.Password)
	switch {
	case errors.Is(err, auth.ErrTooManyAttempts):
		writeError(c, http.StatusTooManyRequests, "RATE_LIMIT_LOGIN", "Terlalu banyak percobaan login. Coba lagi nanti.")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Username atau password salah")
		return
	case err != nil:
		s.log.Error().Err(err).Msg("login gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
}

func (s *Server) monthlyRows(c *gin.Context) (int, int, []report.Row, bool) {
	year := atoiDefault(c.Query("year"), 0)
	month := atoiDefault(c.Query("month"), 0)
	if year < 2000 || year > time.Now().Year()+1 {
		writeError(c, http.StatusBadRequest, "INVALID_YEAR", "Tahun tidak valid")
		return 0, 0, nil, false
	}
	if month < 1 || month > 12 {
		writeError(c, http.StatusBadRequest, "INVALID_MONTH", "Bulan tidak valid")
		return 0, 0, nil, false
	}

	complaints, err := s.store.ListByMonth(c.Request.Context(), year, month)
	if err != nil {
		s.log.Error().Err(err).Msg("daftar pengaduan bulanan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return 0, 0, nil, false
	}
	return year, month, report.RowsFromComplaints(complaints), true
}

func (s *Server) handleExportCSV(c *gin.Context) {
	year, month, rows, ok := s.monthlyRows(c)
	if !ok {
		return
	}

	filename := report.MonthlyFilename(year, month, "csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := report.WriteMonthlyCSV(c.Writer, rows); err != nil {
		s.log.Error().Err(err).Msg("ekspor CSV gagal")
	}
}

func (s *Server) handleExportExcel(c *gin.Context) {
	year, month, rows, ok := s.monthlyRows(c)
	if !ok {
		return
	}

	filename := report.MonthlyFilename(year, month, "xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := report.WriteMonthlyExcel(c.Writer, year, month, rows); err != nil {
		s.log.Error().Err(err).Msg("ekspor Excel gagal")
	}
}

func (s *Server) handleExportSheetsMonthly(c *gin.Context) {
	var req SheetsExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Format permintaan tidak valid")
		return
	}

	year := atoiDefault(req.Year, 0)
	month := atoiDefault(req.Month, 0)
	if len(req.Year) != 4 || year < 2000 {
		writeError(c, http.StatusBadRequest, "INVALID_YEAR", "Tahun tidak valid")
		return
	}
	if month < 1 || month > 12 {
		writeError(c, http.StatusBadRequest, "INVALID_MONTH", "Bulan tidak valid")
		return
	}
	if s.cfg.SheetsMonthlySpreadsheet == "" {
		writeError(c, http.StatusInternalServerError, "NO_SPREADSHEET", "Spreadsheet ID bulanan belum diset")
		return
	}

	complaints, err := s.store.ListByMonth(c.Request.Context(), year, month)
	if err != nil {
		s.log.Error().Err(err).Msg("daftar pengaduan bulanan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	tab, err := s.sheets.UpsertMonthly(c.Request.Context(), s.cfg.SheetsMonthlySpreadsheet, year, month, report.RowsFromComplaints(complaints))
	if err != nil {
		s.log.Error().Err(err).Msg("ekspor Sheets bulanan gagal")
		writeError(c, http.StatusBadGateway, "SHEETS_EXPORT_FAILED", "Ekspor ke Google Sheets gagal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"tab": tab}})
}

func (s *Server) handleExportSheetsAnnual(c *gin.Context) {
	var req SheetsExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Format permintaan tidak valid")
		return
	}

	year := atoiDefault(req.Year, 0)
	if len(req.Year) != 4 || year < 2000 {
		writeError(c, http.StatusBadRequest, "INVALID_YEAR", "Tahun tidak valid")
		return
	}
	if s.cfg.SheetsAnnualSpreadsheet == "" {
		writeError(c, http.StatusInternalServerError, "NO_SPREADSHEET", "Spreadsheet ID tahunan belum diset")
		return
	}

	matrix, statuses, err := s.store.AnnualMatrix(c.Request.Context(), year)
	if err != nil {
		s.log.Error().Err(err).Msg("matriks tahunan gagal")
		writeError(c, http.StatusInternalServerError, "SERVER_ERROR", "Terjadi kesalahan pada server")
		return
	}

	tab, err := s.sheets.UpsertAnnual(c.Request.Context(), s.cfg.SheetsAnnualSpreadsheet, year, matrix, statuses)
	if err != nil {
		s.log.Error().Err(err).Msg("ekspor Sheets tahunan gagal")
		writeError(c, http.StatusBadGateway, "SHEETS_EXPORT_FAILED", "Ekspor ke Google Sheets gagal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"tab": tab}})
}

// parseYear validates the optional ?year= query; defaults to the current
// year.
func (s *Server) parseYear(c *gin.Context) (int, bool) {
	currentYear := time.Now().Year()
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return currentYear, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > currentYear+1 {
		writeError(c, http.StatusBadRequest, "INVALID_YEAR", "Tahun tidak valid")
		return 0, false
	}
	return year, true
}

func atoiDefault(raw string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return parsed
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}
