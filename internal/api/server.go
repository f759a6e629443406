package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/davem/rfpdesk/internal/ai"
	"github.com/davem/rfpdesk/internal/auth"
	"github.com/davem/rfpdesk/internal/compare"
	"github.com/davem/rfpdesk/internal/db"
	"github.com/davem/rfpdesk/internal/mailer"
	"github.com/davem/rfpdesk/internal/models"
	"github.com/davem/rfpdesk/internal/report"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Comparator  *compare.Comparator
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AI          *ai.Client
	Sender      mailer.Sender
}

func NewServer(pool *pgxpool.Pool, aiClient *ai.Client, sender mailer.Sender) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	store := db.NewStore(pool)

	s := &Server{
		DB:          pool,
		Store:       store,
		AuthService: auth.NewService(pool),
		Comparator:  compare.NewComparator(store),
		Echo:        e,
		AI:          aiClient,
		Sender:      sender,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// RFPs (reads are public)
	api.GET("/rfps", s.handleListRFPs)
	api.GET("/rfps/:id", s.handleGetRFP)
	api.GET("/rfps/:id/proposals", s.handleListProposals)

	// Vendors
	api.GET("/vendors", s.handleListVendors)

	// Protected Routes (everything that mutates)
	protected := api.Group("")
	protected.Use(auth.Middleware)
	protected.POST("/rfps", s.handleCreateRFP)
	protected.POST("/rfps/generate", s.handleGenerateRFP)
	protected.POST("/rfps/:id/send", s.handleSendRFP)
	protected.POST("/vendors", s.handleCreateVendor)
	protected.PUT("/vendors/:id", s.handleUpdateVendor)
	protected.DELETE("/vendors/:id", s.handleDeleteVendor)

	// Comparison + reports
	api.POST("/compare", s.handleCompare)
	api.GET("/reports", s.handleListReports)
	api.GET("/reports/:rfpId", s.handleGetReport)
	api.GET("/reports/:rfpId/pdf", s.handleGetReportPDF)
	api.GET("/reports/:rfpId/xlsx", s.handleGetReportXLSX)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// RFPs

func (s *Server) handleCreateRFP(c echo.Context) error {
	var rfp models.RFP
	if err := c.Bind(&rfp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(rfp.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Title is required"})
	}

	if err := s.Store.CreateRFP(c.Request().Context(), &rfp); err != nil {
		c.Logger().Errorf("Failed to create RFP: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusCreated, rfp)
}

type generateRFPRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

func (s *Server) handleGenerateRFP(c echo.Context) error {
	var req generateRFPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Title == "" || req.Description == "" || req.Requirements == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Title, description and requirements are required"})
	}

	draft, err := s.AI.GenerateRFP(c.Request().Context(), req.Title, req.Description, req.Requirements)
	if err != nil {
		var malformed *ai.MalformedOutputError
		if errors.As(err, &malformed) {
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error":     "AI returned invalid JSON format",
				"ai_output": malformed.Raw,
			})
		}
		c.Logger().Errorf("RFP generation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, draft)
}

func (s *Server) handleListRFPs(c echo.Context) error {
	rfps, err := s.Store.ListRFPs(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if rfps == nil {
		rfps = []models.RFP{}
	}
	return c.JSON(http.StatusOK, rfps)
}

func (s *Server) handleGetRFP(c echo.Context) error {
	rfp, err := s.Store.GetRFP(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if rfp == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "RFP not found"})
	}
	return c.JSON(http.StatusOK, rfp)
}

func (s *Server) handleListProposals(c echo.Context) error {
	proposals, err := s.Store.ListProposals(c.Request().Context(), c.Param("id"), nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if proposals == nil {
		proposals = []models.Proposal{}
	}
	return c.JSON(http.StatusOK, proposals)
}

// Vendors

type vendorRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

func (s *Server) handleCreateVendor(c echo.Context) error {
	var req vendorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Name == "" || req.Email == "" || req.Company == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name, email, and company are required"})
	}

	vendor := models.Vendor{
		Name:    req.Name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Company: req.Company,
		Phone:   req.Phone,
	}
	if err := s.Store.CreateVendor(c.Request().Context(), &vendor); err != nil {
		c.Logger().Errorf("Failed to create vendor: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusCreated, vendor)
}

func (s *Server) handleListVendors(c echo.Context) error {
	vendors, err := s.Store.ListVendors(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	return c.JSON(http.StatusOK, vendors)
}

func (s *Server) handleUpdateVendor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid vendor id"})
	}

	var req vendorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	vendor := models.Vendor{
		ID:      id,
		Name:    req.Name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Company: req.Company,
		Phone:   req.Phone,
	}
	if err := s.Store.UpdateVendor(c.Request().Context(), &vendor); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, vendor)
}

func (s *Server) handleDeleteVendor(c echo.Context) error {
	if err := s.Store.DeleteVendor(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Vendor deleted"})
}

// Comparison + reports

type compareRequest struct {
	RFPID        string   `json:"rfp_id"`
	VendorEmails []string `json:"vendor_emails"`
}

func (s *Server) handleCompare(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.RFPID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "rfp_id is required"})
	}

	result, err := s.compareRFP(c, req.RFPID, req.VendorEmails)
	if result == nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// compareRFP runs the comparison and maps the sentinel errors onto HTTP
// responses. On a nil result the returned error is the already-written echo
// response.
func (s *Server) compareRFP(c echo.Context, rfpID string, vendorEmails []string) (*models.ComparisonResult, error) {
	result, err := s.Comparator.Compare(c.Request().Context(), rfpID, vendorEmails)
	if err != nil {
		switch {
		case errors.Is(err, compare.ErrRFPNotFound):
			return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "RFP not found"})
		case errors.Is(err, compare.ErrNoProposals):
			return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "No proposals found for this RFP"})
		default:
			c.Logger().Errorf("Comparison failed for %s: %v", rfpID, err)
			return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
		}
	}
	return result, nil
}

func (s *Server) handleListReports(c echo.Context) error {
	summaries, err := s.Store.ListReportSummaries(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if summaries == nil {
		summaries = []db.ReportSummary{}
	}
	return c.JSON(http.StatusOK, summaries)
}

func (s *Server) handleGetReport(c echo.Context) error {
	result, err := s.compareRFP(c, c.Param("rfpId"), nil)
	if result == nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetReportPDF(c echo.Context) error {
	rfpID := c.Param("rfpId")
	result, err := s.compareRFP(c, rfpID, nil)
	if result == nil {
		return err
	}

	data, err := report.PDF(result)
	if err != nil {
		c.Logger().Errorf("PDF generation failed for %s: %v", rfpID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="report_%s.pdf"`, rfpID))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

func (s *Server) handleGetReportXLSX(c echo.Context) error {
	rfpID := c.Param("rfpId")
	result, err := s.compareRFP(c, rfpID, nil)
	if result == nil {
		return err
	}

	data, err := report.XLSX(result)
	if err != nil {
		c.Logger().Errorf("XLSX generation failed for %s: %v", rfpID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="report_%s.xlsx"`, rfpID))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Send flow

type sendRFPRequest struct {
	VendorIDs []string `json:"vendor_ids"`
}

type sendResult struct {
	Vendor     string `json:"vendor"`
	ProposalID string `json:"proposal_id,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// handleSendRFP emails the solicitation to each selected vendor and records
// a placeholder proposal per send; ingestion fills the extracted fields when
// the vendor replies.
func (s *Server) handleSendRFP(c echo.Context) error {
	ctx := c.Request().Context()

	var req sendRFPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if len(req.VendorIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "vendor_ids are required"})
	}

	rfp, err := s.Store.GetRFP(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if rfp == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "RFP not found"})
	}

	subject := mailer.SolicitationSubject(rfp)
	var results []sendResult

	for _, vendorID := range req.VendorIDs {
		vendor, err := s.Store.GetVendor(ctx, vendorID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		if vendor == nil {
			results = append(results, sendResult{Vendor: vendorID, Status: "skipped", Error: "vendor not found"})
			continue
		}

		body := mailer.SolicitationBody(rfp, vendor)
		if err := s.Sender.Send(ctx, vendor.Email, subject, body); err != nil {
			c.Logger().Errorf("Send to %s failed: %v", vendor.Email, err)
			results = append(results, sendResult{Vendor: vendor.Email, Status: "failed", Error: err.Error()})
			continue
		}

		proposal := models.Proposal{
			RFPID:       rfp.ID,
			VendorID:    vendor.ID,
			VendorEmail: vendor.Email,
			Subject:     subject,
			Body:        body,
		}
		if err := s.Store.CreateProposal(ctx, &proposal); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		results = append(results, sendResult{Vendor: vendor.Email, ProposalID: proposal.ID.String(), Status: "sent"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"message": "RFP sent", "results": results})
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
