package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/services/dto"
)

type GigHandler struct {
	*BaseHandler
	gigService *services.GigService
}

func NewGigHandler(base *BaseHandler, gigService *services.GigService) *GigHandler {
	return &GigHandler{
		BaseHandler: base,
		gigService:  gigService,
	}
}

func (h *GigHandler) RegisterRoutes(r *gin.RouterGroup) {
	jobs := r.Group("/jobs")
	{
		// Public listings.
		jobs.GET("", h.ListOpenGigs)

		// Authenticated routes. Static paths registered before the
		// parameterized ones so gin does not treat them as :jobId.
		auth := jobs.Group("")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.GET("/my-gigs", middleware.RoleMiddleware(models.UserRoleInstitution), h.GetMyGigs)
			auth.GET("/my-gigs-professional", middleware.RoleMiddleware(models.UserRoleProfessional), h.GetMyProfessionalGigs)
			auth.POST("", middleware.RoleMiddleware(models.UserRoleInstitution), h.CreateGig)

			auth.POST("/:jobId/express-interest", middleware.RoleMiddleware(models.UserRoleProfessional), h.ExpressInterest)
			auth.GET("/:jobId/check-interest", middleware.RoleMiddleware(models.UserRoleProfessional), h.CheckInterest)

			institution := auth.Group("/:jobId")
			institution.Use(middleware.RoleMiddleware(models.UserRoleInstitution))
			{
				institution.GET("/interested-professionals", h.GetInterestedProfessionals)
				institution.POST("/interests/:professionalId/decide", h.DecideInterest)
				institution.POST("/assign/:professionalId", h.AssignProfessional)
				institution.POST("/close", h.CloseGig)
				institution.POST("/initiate-payment", h.InitiatePayment)
				institution.POST("/mark-paid", h.MarkPaid)
			}
		}

		jobs.GET("/:jobId", h.GetGig)
	}
}

func (h *GigHandler) CreateGig(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGigRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	req.InstitutionID = userID

	gig, err := h.gigService.CreateGig(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gig)
}

func (h *GigHandler) GetGig(c *gin.Context) {
	gig, err := h.gigService.GetGig(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

func (h *GigHandler) ListOpenGigs(c *gin.Context) {
	urgentOnly := ParseQueryBool(c, "urgent")

	gigs, err := h.gigService.ListOpenGigs(c.Request.Context(), urgentOnly)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gigs": gigs, "total": len(gigs)})
}

func (h *GigHandler) GetMyGigs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	gigs, err := h.gigService.GetInstitutionGigs(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gigs": gigs, "total": len(gigs)})
}

func (h *GigHandler) GetMyProfessionalGigs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	gigs, err := h.gigService.GetProfessionalGigs(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gigs": gigs, "total": len(gigs)})
}

func (h *GigHandler) ExpressInterest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	interest, err := h.gigService.ExpressInterest(c.Request.Context(), c.Param("jobId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Interest expressed successfully",
		"interest": interest,
	})
}

func (h *GigHandler) CheckInterest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	check, err := h.gigService.CheckInterest(c.Request.Context(), c.Param("jobId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"has_interest": check.Interested, "status": check.Status})
}

func (h *GigHandler) GetInterestedProfessionals(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	list, err := h.gigService.GetInterestedProfessionals(c.Request.Context(), c.Param("jobId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"professionals": list, "total": len(list)})
}

func (h *GigHandler) DecideInterest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.DecideInterestRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	gig, err := h.gigService.DecideInterest(
		c.Request.Context(),
		c.Param("jobId"),
		c.Param("professionalId"),
		userID,
		models.InterestStatus(req.Decision),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Decision applied", "gig": gig})
}

func (h *GigHandler) AssignProfessional(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	gig, err := h.gigService.AssignProfessional(
		c.Request.Context(), c.Param("jobId"), c.Param("professionalId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Professional assigned", "gig": gig})
}

func (h *GigHandler) CloseGig(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	gig, err := h.gigService.CloseGig(c.Request.Context(), c.Param("jobId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gig closed", "gig": gig})
}

func (h *GigHandler) InitiatePayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.gigService.InitiatePayment(c.Request.Context(), c.Param("jobId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GigHandler) MarkPaid(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	gig, err := h.gigService.MarkPaid(c.Request.Context(), c.Param("jobId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gig marked as paid", "gig": gig})
}
