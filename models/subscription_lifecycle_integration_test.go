package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/Jasemalbateni/academybase-sub001/workflow"
	"github.com/shopspring/decimal"
)

// Subscription lifecycle integration harness.
//
// Exercises the payment -> finance line -> period -> eligibility -> attendance
// chain against a real MySQL + redis.
//
// Usage (requires Docker):
//   INTEGRATION_TESTS=1 go test ./models -run SubscriptionLifecycle -v

func TestSubscriptionLifecycle(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME_2", "academybase_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetIsAdminInContext(ctx, true)

	academy, err := models.CreateAcademy(ctx, &models.NewAcademy{
		Name:  "Lifecycle Academy",
		Email: "owner@test.local",
	})
	if err != nil {
		t.Fatalf("CreateAcademy: %v", err)
	}
	academyID := academy.ID.String()
	ctx = utils.SetAcademyIdInContext(ctx, academyID)

	// default branch is created with the academy; give it a weekday set
	branch, err := models.UpdateBranch(ctx, academy.PrimaryBranchId, &models.NewBranch{
		Name:         "Main Branch",
		TrainingDays: "6,2", // Saturday, Tuesday
	})
	if err != nil {
		t.Fatalf("UpdateBranch: %v", err)
	}

	member, err := models.CreateMember(ctx, &models.NewMember{
		BranchId:         branch.ID,
		Name:             "Lifecycle Member",
		SubscriptionMode: "calendar_month",
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	paidDate := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	payment, err := models.CreatePayment(ctx, &models.NewPayment{
		MemberId:  member.ID,
		PaidDate:  models.MyDateString(paidDate),
		Amount:    "150000",
		Kind:      "subscription",
		StartDate: models.MyDateString(paidDate),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	// payment must generate an auto revenue line in its paid month
	month := utils.MonthKey(paidDate)
	summary, err := models.GetFinanceSummary(ctx, month)
	if err != nil {
		t.Fatalf("GetFinanceSummary: %v", err)
	}
	if !summary.Revenue.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("revenue = %s, want 150000", summary.Revenue)
	}

	// period: calendar month from Mar 9 runs through Apr 8 inclusive
	periods, err := workflow.ResolveMemberPeriods(ctx, member.ID)
	if err != nil {
		t.Fatalf("ResolveMemberPeriods: %v", err)
	}
	if len(periods) != 1 {
		t.Fatalf("got %d periods, want 1", len(periods))
	}
	if got := workflow.Classify(time.Date(2026, time.April, 8, 0, 0, 0, 0, time.UTC), periods); got != models.EligibilityStatusActive {
		t.Fatalf("Apr 8 status = %s, want active", got)
	}
	if got := workflow.Classify(time.Date(2026, time.April, 9, 0, 0, 0, 0, time.UTC), periods); got != models.EligibilityStatusExpired {
		t.Fatalf("Apr 9 status = %s, want expired", got)
	}

	// attendance mark round trip
	markDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC) // a Tuesday
	if err := models.PersistPresence(ctx, member.ID, markDate, true); err != nil {
		t.Fatalf("PersistPresence: %v", err)
	}
	present, found, err := models.GetPresence(ctx, member.ID, markDate)
	if err != nil || !found || !present {
		t.Fatalf("GetPresence = (%v, %v, %v), want (true, true, nil)", present, found, err)
	}

	// deleting the payment suppresses its auto line; revenue drops to zero
	if _, err := models.DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	summary, err = models.GetFinanceSummary(ctx, month)
	if err != nil {
		t.Fatalf("GetFinanceSummary after delete: %v", err)
	}
	if !summary.Revenue.IsZero() {
		t.Fatalf("revenue after delete = %s, want 0", summary.Revenue)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("academybase-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("academybase-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=academybase_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
