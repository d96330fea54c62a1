package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "A"
	UserRoleOwner UserRole = "O"
	UserRoleStaff UserRole = "S"
)

func ParseUserRole(str string) (UserRole, error) {
	switch str {
	case "A":
		return UserRoleAdmin, nil
	case "O":
		return UserRoleOwner, nil
	case "S":
		return UserRoleStaff, nil
	default:
		return "", errors.New("invalid user role")
	}
}

func (t UserRole) Name() string {
	switch t {
	case UserRoleAdmin:
		return "Admin"
	case UserRoleOwner:
		return "Owner"
	case UserRoleStaff:
		return "Staff"
	}
	return string(t)
}

type SubscriptionMode string

const (
	SubscriptionModeCalendarMonth SubscriptionMode = "calendar_month"
	SubscriptionModeSessionCount  SubscriptionMode = "session_count"
)

func ParseSubscriptionMode(str string) (SubscriptionMode, error) {
	switch str {
	case "calendar_month":
		return SubscriptionModeCalendarMonth, nil
	case "session_count":
		return SubscriptionModeSessionCount, nil
	default:
		return "", errors.New("invalid subscription mode")
	}
}

type EligibilityStatus string

const (
	EligibilityStatusNotSubscribed EligibilityStatus = "not_subscribed"
	EligibilityStatusActive        EligibilityStatus = "active"
	EligibilityStatusExpired       EligibilityStatus = "expired"
)

type PaymentKind string

const (
	PaymentKindSubscription PaymentKind = "subscription"
	PaymentKindLegacy       PaymentKind = "legacy"
)

func ParsePaymentKind(str string) (PaymentKind, error) {
	switch str {
	case "subscription":
		return PaymentKindSubscription, nil
	case "legacy":
		return PaymentKindLegacy, nil
	default:
		return "", errors.New("invalid payment kind")
	}
}

type FinanceTransactionType string

const (
	FinanceTransactionTypeRevenue FinanceTransactionType = "revenue"
	FinanceTransactionTypeExpense FinanceTransactionType = "expense"
)

func ParseFinanceTransactionType(str string) (FinanceTransactionType, error) {
	switch str {
	case "revenue":
		return FinanceTransactionTypeRevenue, nil
	case "expense":
		return FinanceTransactionTypeExpense, nil
	default:
		return "", errors.New("invalid finance transaction type")
	}
}

type FinanceTransactionSource string

const (
	FinanceTransactionSourceAuto       FinanceTransactionSource = "auto"
	FinanceTransactionSourceManual     FinanceTransactionSource = "manual"
	FinanceTransactionSourceSuppressed FinanceTransactionSource = "suppressed"
)

type CalendarEventType string

const (
	CalendarEventTypeTraining CalendarEventType = "training"
	CalendarEventTypeHoliday  CalendarEventType = "holiday"
	CalendarEventTypeMeeting  CalendarEventType = "meeting"
	CalendarEventTypeNote     CalendarEventType = "note"
)

func ParseCalendarEventType(str string) (CalendarEventType, error) {
	eventTypes := map[string]CalendarEventType{
		"training": CalendarEventTypeTraining,
		"holiday":  CalendarEventTypeHoliday,
		"meeting":  CalendarEventTypeMeeting,
		"note":     CalendarEventTypeNote,
	}
	t, ok := eventTypes[str]
	if !ok {
		return "", errors.New("invalid calendar event type")
	}
	return t, nil
}

type CalendarEventSource string

const (
	CalendarEventSourceManual CalendarEventSource = "manual"
	CalendarEventSourceSynced CalendarEventSource = "synced"
)

type InsightSeverity string

const (
	InsightSeverityCritical InsightSeverity = "critical"
	InsightSeverityWarning  InsightSeverity = "warning"
	InsightSeverityInfo     InsightSeverity = "info"
)

// Rank orders severities for sorting, critical first.
func (t InsightSeverity) Rank() int {
	switch t {
	case InsightSeverityCritical:
		return 0
	case InsightSeverityWarning:
		return 1
	case InsightSeverityInfo:
		return 2
	}
	return 3
}

type InsightScope string

const (
	InsightScopeAcademy InsightScope = "academy"
	InsightScopeBranch  InsightScope = "branch"
	InsightScopeMember  InsightScope = "member"
)

type MyDateString time.Time

// Parse the string into time.Time object
func (t *MyDateString) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	if str == "" || str == "null" {
		*t = MyDateString(time.Time{})
		return nil
	}

	// Parse the date string into a time.Time object
	localTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		localTime, err = time.Parse("2006-01-02T15:04:05", str)
		if err != nil {
			return errors.New("error parsing date, want YYYY-MM-DD")
		}
	}
	*t = MyDateString(localTime)
	return nil
}

func (t MyDateString) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(t).Format("2006-01-02"))), nil
}

func (t MyDateString) Time() time.Time {
	return time.Time(t)
}

func (t MyDateString) IsZero() bool {
	return time.Time(t).IsZero()
}

// Value implements the driver.Valuer interface
func (t MyDateString) Value() (driver.Value, error) {
	return time.Time(t), nil
}
