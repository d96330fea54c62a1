package main

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func routeSet(r *gin.Engine) map[string]bool {
	set := make(map[string]bool)
	for _, route := range r.Routes() {
		set[route.Method+" "+route.Path] = true
	}
	return set
}

func TestRegisterRoutesExposesFullSurface(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerRoutes(r)
	routes := routeSet(r)

	expected := []string{
		"POST /auth/login",
		"POST /auth/logout",
		"POST /auth/change-password",
		"GET /api/users",
		"POST /api/users",
		"PUT /api/users/:id",
		"DELETE /api/users/:id",
		"GET /api/branches",
		"GET /api/branches/:id/members",
		"POST /api/branches/:id/toggle-active",
		"GET /api/members",
		"POST /api/members/:id/pause",
		"GET /api/members/:id/periods",
		"GET /api/members/:id/eligibility",
		"GET /api/payments",
		"GET /api/calendar-events",
		"GET /api/finance-transactions",
		"POST /api/finance-transactions/:id/suppress",
		"GET /api/finance-transactions/summary",
		"GET /api/attendance",
		"GET /api/attendance/sheet",
		"POST /api/attendance/toggle",
		"GET /api/insights",
		"GET /api/reports/monthly-summary",
		"GET /api/reports/revenue-by-month",
		"GET /api/reports/monthly-summary/export",
		"GET /api/reports/payment-activity",
		"GET /api/reports/expiring-members",
		"POST /internal/ops/insights/recompute",
		"POST /internal/ops/cache/clear",
	}
	for _, want := range expected {
		if !routes[want] {
			t.Errorf("route %q is not registered", want)
		}
	}
}
