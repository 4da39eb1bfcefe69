package handlers

import (
	"net/http"
	"time"

	"github.com/codewright/jobhub/internal/config"
	"github.com/codewright/jobhub/internal/dashboard"
	"github.com/codewright/jobhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *dashboard.Service
}

func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Recruiter(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	summary, err := h.svc.RecruiterSummary(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not build dashboard")
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) Seeker(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	summary, err := h.svc.SeekerSummary(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not build dashboard")
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
