package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/middlewares"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/models/reports"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/Jasemalbateni/academybase-sub001/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// presenceLedger holds the process-wide optimistic attendance state, backed
// by the durable upsert path.
var presenceLedger = workflow.NewPresenceLedger(models.PersistPresence)

func registerRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler)
	r.POST("/auth/logout", logoutHandler)
	r.POST("/auth/change-password", middlewares.RequireAuth(), changePasswordHandler)

	api := r.Group("/api", middlewares.RequireAuth())
	{
		users := api.Group("/users", middlewares.RequireAdmin())
		{
			users.GET("", listUsersHandler)
			users.POST("", createUserHandler)
			users.PUT("/:id", updateUserHandler)
			users.DELETE("/:id", deleteUserHandler)
		}

		api.GET("/branches", listBranchesHandler)
		api.GET("/branches/:id/members", listBranchMembersHandler)
		api.POST("/branches", createBranchHandler)
		api.GET("/branches/:id", getBranchHandler)
		api.PUT("/branches/:id", updateBranchHandler)
		api.DELETE("/branches/:id", deleteBranchHandler)
		api.POST("/branches/:id/toggle-active", toggleBranchHandler)

		api.GET("/members", listMembersHandler)
		api.POST("/members", createMemberHandler)
		api.GET("/members/:id", getMemberHandler)
		api.PUT("/members/:id", updateMemberHandler)
		api.DELETE("/members/:id", deleteMemberHandler)
		api.POST("/members/:id/toggle-active", toggleMemberHandler)
		api.POST("/members/:id/pause", pauseMemberHandler)
		api.GET("/members/:id/periods", memberPeriodsHandler)
		api.GET("/members/:id/eligibility", memberEligibilityHandler)

		api.GET("/payments", listPaymentsHandler)
		api.POST("/payments", createPaymentHandler)
		api.PUT("/payments/:id", updatePaymentHandler)
		api.DELETE("/payments/:id", deletePaymentHandler)

		api.GET("/calendar-events", listCalendarEventsHandler)
		api.POST("/calendar-events", createCalendarEventHandler)
		api.PUT("/calendar-events/:id", updateCalendarEventHandler)
		api.DELETE("/calendar-events/:id", deleteCalendarEventHandler)

		api.GET("/finance-transactions", listFinanceTransactionsHandler)
		api.POST("/finance-transactions", createFinanceTransactionHandler)
		api.POST("/finance-transactions/:id/suppress", suppressFinanceTransactionHandler)
		api.GET("/finance-transactions/summary", financeSummaryHandler)

		api.GET("/attendance", listAttendanceHandler)
		api.GET("/attendance/sheet", attendanceSheetHandler)
		api.POST("/attendance/toggle", attendanceToggleHandler)

		api.GET("/insights", listInsightsHandler)

		api.GET("/reports/monthly-summary", monthlySummaryHandler)
		api.GET("/reports/revenue-by-month", revenueByMonthHandler)
		api.GET("/reports/monthly-summary/export", exportMonthlySummaryHandler)
		api.GET("/reports/payment-activity", paymentActivityHandler)
		api.GET("/reports/expiring-members", expiringMembersHandler)
	}

	ops := r.Group("/internal/ops", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		ops.POST("/insights/recompute", recomputeInsightsHandler)
		ops.POST("/cache/clear", clearCacheHandler)
	}
}

/* shared request plumbing */

func respondError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, utils.ErrorToggleInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func optionalString(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func optionalInt(c *gin.Context, key string) *int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}

func optionalBool(c *gin.Context, key string) *bool {
	if v := c.Query(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

// monthQuery reads ?month=YYYY-MM, defaulting to the current month.
func monthQuery(c *gin.Context) (string, bool) {
	month := c.Query("month")
	if month == "" {
		return utils.MonthKey(utils.Today()), true
	}
	if _, err := utils.ParseMonth(month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return month, true
}

// yearMonthQuery reads ?year=&month= as integers, defaulting to today.
func yearMonthQuery(c *gin.Context) (int, time.Month, bool) {
	today := utils.Today()
	year, month := today.Year(), int(today.Month())
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return 0, 0, false
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return 0, 0, false
		}
		month = n
	}
	return year, time.Month(month), true
}

/* auth */

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	info, err := models.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func logoutHandler(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// changePasswordHandler revokes every session of the user on success.
func changePasswordHandler(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "username": user.Username})
}

/* users (admin only) */

func listUsersHandler(c *gin.Context) {
	results, err := models.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	if input.AcademyId == "" {
		if academyId, found := utils.GetAcademyIdFromContext(c.Request.Context()); found {
			input.AcademyId = academyId
		}
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func updateUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.User
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	user, err := input.UpdateUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, user)
}

func deleteUserHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.User
	user, err := input.DeleteUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, user)
}

/* branches */

func listBranchesHandler(c *gin.Context) {
	results, err := models.GetBranches(c.Request.Context(), optionalString(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func createBranchHandler(c *gin.Context) {
	var input models.NewBranch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	branch, err := models.CreateBranch(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, branch)
}

func getBranchHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	branch, err := models.GetBranch(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func updateBranchHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewBranch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	branch, err := models.UpdateBranch(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func deleteBranchHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	branch, err := models.DeleteBranch(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func toggleBranchHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	branch, err := models.ToggleActiveBranch(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

// listBranchMembersHandler returns the branch roster without pagination.
func listBranchMembersHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	members, err := models.GetMembers(c.Request.Context(), optionalString(c, "name"), &id, optionalBool(c, "paused"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

/* members */

func listMembersHandler(c *gin.Context) {
	limit := 50
	if n := optionalInt(c, "limit"); n != nil && *n > 0 && *n <= 200 {
		limit = *n
	}
	connection, err := models.PaginateMember(c.Request.Context(), &limit,
		optionalString(c, "after"), optionalString(c, "name"),
		optionalInt(c, "branch_id"), optionalBool(c, "paused"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, connection)
}

func createMemberHandler(c *gin.Context) {
	var input models.NewMember
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	member, err := models.CreateMember(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func getMemberHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	member, err := models.GetMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func updateMemberHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewMember
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	member, err := models.UpdateMember(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func deleteMemberHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	member, err := models.DeleteMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func toggleMemberHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req toggleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	member, err := models.ToggleActiveMember(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type pauseRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

func pauseMemberHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	member, err := models.SetMemberPaused(c.Request.Context(), id, *req.Paused)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func memberPeriodsHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	periods, err := workflow.ResolveMemberPeriods(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": id, "periods": periods})
}

func memberEligibilityHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	date := utils.Today()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
		date = parsed
	}
	periods, err := workflow.ResolveMemberPeriods(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"member_id": id,
		"date":      date.Format("2006-01-02"),
		"status":    workflow.Classify(date, periods),
	})
}

/* payments */

func listPaymentsHandler(c *gin.Context) {
	limit := 50
	if n := optionalInt(c, "limit"); n != nil && *n > 0 && *n <= 200 {
		limit = *n
	}
	connection, err := models.PaginatePayment(c.Request.Context(), &limit,
		optionalString(c, "after"), optionalInt(c, "member_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, connection)
}

func createPaymentHandler(c *gin.Context) {
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	payment, err := models.CreatePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func updatePaymentHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	payment, err := models.UpdatePayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func deletePaymentHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	payment, err := models.DeletePayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

/* calendar events */

func listCalendarEventsHandler(c *gin.Context) {
	year, month, ok := yearMonthQuery(c)
	if !ok {
		return
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	events, err := models.GetCalendarEvents(c.Request.Context(), optionalInt(c, "branch_id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func createCalendarEventHandler(c *gin.Context) {
	var input models.NewCalendarEvent
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	event, err := models.CreateCalendarEvent(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func updateCalendarEventHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewCalendarEvent
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	event, err := models.UpdateCalendarEvent(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func deleteCalendarEventHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	event, err := models.DeleteCalendarEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

/* finance */

func listFinanceTransactionsHandler(c *gin.Context) {
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	includeSuppressed := c.Query("include_suppressed") == "1"
	lines, err := models.GetFinanceTransactions(c.Request.Context(), &month, includeSuppressed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func createFinanceTransactionHandler(c *gin.Context) {
	var input models.NewFinanceTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	line, err := models.CreateManualFinanceTransaction(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func suppressFinanceTransactionHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	line, err := models.SuppressFinanceTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func financeSummaryHandler(c *gin.Context) {
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	summary, err := models.GetFinanceSummary(c.Request.Context(), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

/* attendance */

func listAttendanceHandler(c *gin.Context) {
	year, month, ok := yearMonthQuery(c)
	if !ok {
		return
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	records, err := models.GetAttendance(c.Request.Context(), optionalInt(c, "branch_id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func attendanceSheetHandler(c *gin.Context) {
	memberId := optionalInt(c, "member_id")
	if memberId == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id is required"})
		return
	}
	year, month, ok := yearMonthQuery(c)
	if !ok {
		return
	}
	sheet, err := workflow.BuildMemberSheet(c.Request.Context(), *memberId, year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

type toggleAttendanceRequest struct {
	MemberId int                 `json:"member_id" binding:"required"`
	Date     models.MyDateString `json:"date" binding:"required"`
}

func attendanceToggleHandler(c *gin.Context) {
	var req toggleAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	if req.Date.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	ctx := c.Request.Context()
	date := req.Date.Time()
	today := utils.Today()

	member, err := models.GetMember(ctx, req.MemberId)
	if err != nil {
		respondError(c, err)
		return
	}
	if utils.DereferencePtr(member.IsPaused) && !date.Before(today) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member is paused"})
		return
	}
	if bound := config.AttendancePastEditDays(); bound > 0 && date.Before(today.AddDate(0, 0, -bound)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is outside the editable window"})
		return
	}

	periods, err := workflow.ResolveMemberPeriods(ctx, req.MemberId)
	if err != nil {
		respondError(c, err)
		return
	}
	if status := workflow.Classify(date, periods); status != models.EligibilityStatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member is not active on this date"})
		return
	}

	// seed the ledger with the stored mark so the flip starts from reality
	if present, found, err := models.GetPresence(ctx, req.MemberId, date); err == nil && found {
		presenceLedger.Seed(req.MemberId, date, present)
	}

	result, err := presenceLedger.Toggle(ctx, workflow.ToggleCommand{MemberId: req.MemberId, Date: date})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

/* insights */

func listInsightsHandler(c *gin.Context) {
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	academyId, found := utils.GetAcademyIdFromContext(c.Request.Context())
	if !found || academyId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	insights, err := workflow.GetInsights(c.Request.Context(), academyId, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "insights": insights})
}

func recomputeInsightsHandler(c *gin.Context) {
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	academyId := c.Query("academy_id")
	if academyId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "academy_id is required"})
		return
	}
	ctx := utils.SetAcademyIdInContext(c.Request.Context(), academyId)
	insights, err := workflow.RefreshInsights(ctx, academyId, month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "count": len(insights)})
}

func clearCacheHandler(c *gin.Context) {
	status, err := models.ClearRedisCache(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

/* reports */

func monthlySummaryHandler(c *gin.Context) {
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	summary, err := reports.GetMonthlySummary(c.Request.Context(), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func revenueByMonthHandler(c *gin.Context) {
	months := 12
	if n := optionalInt(c, "months"); n != nil && *n > 0 {
		months = *n
	}
	series, err := reports.GetRevenueByMonth(c.Request.Context(), months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func paymentActivityHandler(c *gin.Context) {
	period := c.DefaultQuery("period", "last6months")
	rows, err := reports.GetPaymentActivity(c.Request.Context(), period, optionalInt(c, "branch_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "rows": rows})
}

func expiringMembersHandler(c *gin.Context) {
	days := 7
	if n := optionalInt(c, "days"); n != nil && *n > 0 && *n <= 90 {
		days = *n
	}
	academyId, found := utils.GetAcademyIdFromContext(c.Request.Context())
	if !found || academyId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	from := utils.Today()
	to := from.AddDate(0, 0, days)
	members, err := models.MembersExpiringBetween(c.Request.Context(), academyId, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "members": members})
}

func exportMonthlySummaryHandler(c *gin.Context) {
	month, ok := monthQuery(c)
	if !ok {
		return
	}
	workbook, err := reports.BuildMonthlySummaryWorkbook(c.Request.Context(), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=monthly-summary-"+month+".xlsx")
	if err := workbook.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
	}
}
